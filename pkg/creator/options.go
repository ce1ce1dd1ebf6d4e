package creator

import (
	"time"

	"github.com/PentesterFlow/mcpcreator/internal/logger"
	"github.com/PentesterFlow/mcpcreator/internal/output"
	"github.com/PentesterFlow/mcpcreator/internal/parser"
	"github.com/PentesterFlow/mcpcreator/internal/redact"
)

// Option is a functional option for configuring the Creator.
type Option func(*Creator) error

// WithConfig replaces the whole configuration.
func WithConfig(config *Config) Option {
	return func(c *Creator) error {
		if config != nil {
			c.config = config.Clone()
		}
		return nil
	}
}

// WithName overrides the derived service name. A leading "<prefix>-" is
// stripped.
func WithName(name string) Option {
	return func(c *Creator) error {
		c.config.Name = name
		return nil
	}
}

// WithOutputDir sets the directory the package is written into.
func WithOutputDir(dir string) Option {
	return func(c *Creator) error {
		c.config.OutputDir = dir
		return nil
	}
}

// WithPrefix sets the server name prefix.
func WithPrefix(prefix string) Option {
	return func(c *Creator) error {
		c.config.Prefix = prefix
		return nil
	}
}

// WithScope adds classification tables to the built-in ones.
func WithScope(scope ScopeConfig) Option {
	return func(c *Creator) error {
		c.config.Scope = scope
		return nil
	}
}

// WithTruncation sets the response example limits.
func WithTruncation(limits parser.Limits) Option {
	return func(c *Creator) error {
		c.config.Truncation = limits
		return nil
	}
}

// WithStateFile saves an analysis snapshot after every run.
func WithStateFile(path string) Option {
	return func(c *Creator) error {
		c.config.StateFile = path
		return nil
	}
}

// WithMetricsFile writes pipeline metrics in Prometheus text format after
// every run.
func WithMetricsFile(path string) Option {
	return func(c *Creator) error {
		c.config.MetricsFile = path
		return nil
	}
}

// WithoutRedaction keeps example values as observed.
func WithoutRedaction() Option {
	return func(c *Creator) error {
		c.config.Redaction.Enabled = false
		return nil
	}
}

// WithRedactionPatterns adds custom redaction rules.
func WithRedactionPatterns(patterns ...redact.Pattern) Option {
	return func(c *Creator) error {
		c.config.Redaction.Patterns = append(c.config.Redaction.Patterns, patterns...)
		return nil
	}
}

// WithOpenAPI enables or disables the openapi.yaml artifact.
func WithOpenAPI(enabled bool) Option {
	return func(c *Creator) error {
		c.config.OpenAPI = enabled
		return nil
	}
}

// WithVerbose enables verbose logging.
func WithVerbose(verbose bool) Option {
	return func(c *Creator) error {
		c.config.Verbose = verbose
		return nil
	}
}

// WithDebug enables debug mode.
func WithDebug(debug bool) Option {
	return func(c *Creator) error {
		c.config.Debug = debug
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Creator) error {
		c.logger = l
		return nil
	}
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Creator) error {
		if now != nil {
			c.now = now
		}
		return nil
	}
}

// WithWriter replaces the directory writer, e.g. with an in-memory one.
func WithWriter(w output.Writer) Option {
	return func(c *Creator) error {
		c.writer = w
		return nil
	}
}
