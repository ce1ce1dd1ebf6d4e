package creator

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PentesterFlow/mcpcreator/internal/errors"
	"github.com/PentesterFlow/mcpcreator/internal/model"
	"github.com/PentesterFlow/mcpcreator/internal/parser"
	"github.com/PentesterFlow/mcpcreator/internal/redact"
	"github.com/PentesterFlow/mcpcreator/internal/scope"
)

// Config holds all pipeline configuration.
type Config struct {
	// Service name override; derived from the trace when empty
	Name string `json:"name" yaml:"name"`

	// Directory the generated package is written into
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Prefix of the generated server name
	Prefix string `json:"prefix" yaml:"prefix"`

	// Response example limits
	Truncation parser.Limits `json:"truncation" yaml:"truncation"`

	// Credential scrubbing of example values
	Redaction RedactionConfig `json:"redaction" yaml:"redaction"`

	// Extra classification tables added to the built-in ones
	Scope ScopeConfig `json:"scope" yaml:"scope"`

	// Emit openapi.yaml next to the package
	OpenAPI bool `json:"openapi" yaml:"openapi"`

	// Analysis snapshot destination (.db, .json or .gz)
	StateFile string `json:"state_file" yaml:"state_file"`

	// Prometheus textfile destination
	MetricsFile string `json:"metrics_file" yaml:"metrics_file"`

	// Verbose logging
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Debug mode
	Debug bool `json:"debug" yaml:"debug"`
}

// RedactionConfig controls credential scrubbing.
type RedactionConfig struct {
	Enabled  bool             `json:"enabled" yaml:"enabled"`
	Patterns []redact.Pattern `json:"patterns,omitempty" yaml:"patterns,omitempty"`
}

// ScopeConfig extends the record classifier tables.
type ScopeConfig struct {
	StaticExtensions []string `json:"static_extensions,omitempty" yaml:"static_extensions,omitempty"`
	StaticDirs       []string `json:"static_dirs,omitempty" yaml:"static_dirs,omitempty"`
	APISegments      []string `json:"api_segments,omitempty" yaml:"api_segments,omitempty"`
}

// Classifier returns a classifier seeded with the defaults plus the extra tables.
func (s ScopeConfig) Classifier() *scope.Classifier {
	return scope.NewClassifier(scope.NewRuleBuilder().
		WithStaticExtensions(s.StaticExtensions...).
		WithStaticDirs(s.StaticDirs...).
		WithAPISegments(s.APISegments...).
		Build())
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:  ".",
		Prefix:     model.DefaultPrefix,
		Truncation: parser.DefaultLimits(),
		Redaction: RedactionConfig{
			Enabled: true,
		},
		OpenAPI: true,
	}
}

// LoadFromFile loads configuration from a file (JSON or YAML).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// SaveToFile saves configuration to a file.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

var nameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Name != "" && !nameRe.MatchString(c.Name) {
		return errors.NewConfigError("name", fmt.Sprintf("%q must start with a letter or digit and contain only letters, digits, '.', '_' or '-'", c.Name))
	}

	if c.Prefix != "" && !nameRe.MatchString(c.Prefix) {
		return errors.NewConfigError("prefix", fmt.Sprintf("%q is not a valid package prefix", c.Prefix))
	}

	if c.OutputDir == "" {
		return errors.NewConfigError("output_dir", "output directory is required")
	}

	if c.Truncation.MaxDepth < 1 {
		return errors.NewConfigError("truncation.max_depth", "must be at least 1")
	}

	if c.Truncation.MaxKeys < 1 {
		return errors.NewConfigError("truncation.max_keys", "must be at least 1")
	}

	if c.Truncation.MaxItems < 0 {
		return errors.NewConfigError("truncation.max_items", "must not be negative")
	}

	if _, err := redact.New(c.Redaction.Patterns...); err != nil {
		return errors.NewConfigError("redaction.patterns", err.Error())
	}

	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	data, _ := json.Marshal(c)
	clone := &Config{}
	json.Unmarshal(data, clone)
	return clone
}
