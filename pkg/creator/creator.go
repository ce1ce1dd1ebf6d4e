// Package creator is the public API of the HAR-to-MCP pipeline: it loads a
// trace, infers the service model and writes the generated server package.
package creator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/PentesterFlow/mcpcreator/internal/builder"
	"github.com/PentesterFlow/mcpcreator/internal/errors"
	"github.com/PentesterFlow/mcpcreator/internal/generator"
	"github.com/PentesterFlow/mcpcreator/internal/har"
	"github.com/PentesterFlow/mcpcreator/internal/logger"
	"github.com/PentesterFlow/mcpcreator/internal/metrics"
	"github.com/PentesterFlow/mcpcreator/internal/model"
	"github.com/PentesterFlow/mcpcreator/internal/output"
	"github.com/PentesterFlow/mcpcreator/internal/redact"
	"github.com/PentesterFlow/mcpcreator/internal/state"
)

// Creator runs the pipeline. A Creator is not safe for concurrent runs
// that share an output directory.
type Creator struct {
	config  *Config
	logger  *logger.Logger
	metrics *metrics.Collector
	writer  output.Writer
	now     func() time.Time
}

// New creates a new creator with the given options.
func New(opts ...Option) (*Creator, error) {
	c := &Creator{
		config: DefaultConfig(),
		now:    time.Now,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	c.config.Name = model.StripPrefix(c.config.Prefix, c.config.Name)

	if err := c.config.Validate(); err != nil {
		return nil, err
	}

	if c.logger == nil {
		logLevel := logger.WarnLevel
		if c.config.Debug || c.config.Verbose {
			logLevel = logger.DebugLevel
		}
		c.logger = logger.New(logger.Config{
			Level:     logLevel,
			Pretty:    true,
			Component: "creator",
			Caller:    c.config.Debug,
		})
	}

	c.metrics = metrics.New()

	return c, nil
}

// Config returns a copy of the effective configuration.
func (c *Creator) Config() *Config {
	return c.config.Clone()
}

// Metrics returns the collector shared by every run of this creator.
func (c *Creator) Metrics() *metrics.Collector {
	return c.metrics
}

// Analyze loads a trace and infers its service model. When a state file is
// configured the analysis is saved as a snapshot.
func (c *Creator) Analyze(ctx context.Context, path string) (*Analysis, error) {
	runID := uuid.NewString()
	log := c.logger.WithRunID(runID).WithFile(path)
	return c.analyze(ctx, path, runID, log)
}

func (c *Creator) analyze(ctx context.Context, path, runID string, log *logger.Logger) (*Analysis, error) {
	start := time.Now()

	trace, err := har.Load(path)
	if err != nil {
		log.ErrorEvent(err, path, "load")
		return nil, err
	}
	records := trace.Records()
	log.StageEvent("load", len(records))

	var redactor *redact.Engine
	if c.config.Redaction.Enabled {
		redactor, err = redact.New(c.config.Redaction.Patterns...)
		if err != nil {
			return nil, errors.NewConfigError("redaction.patterns", err.Error())
		}
	}

	b := builder.New(builder.Options{
		Name:       c.config.Name,
		Limits:     c.config.Truncation,
		Classifier: c.config.Scope.Classifier(),
		Redactor:   redactor,
		Logger:     log,
		Metrics:    c.metrics,
	})

	res, err := b.Build(ctx, records)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		RunID:     runID,
		Source:    path,
		CreatedAt: c.now(),
		Model:     res.Model,
		Stats:     res.Stats,
		Duration:  time.Since(start),
		prefix:    c.config.Prefix,
	}

	if c.config.StateFile != "" {
		if err := state.SaveSnapshot(c.config.StateFile, a.Snapshot()); err != nil {
			log.ErrorEvent(err, c.config.StateFile, "save_snapshot")
			return nil, err
		}
		log.Debugf("Snapshot saved to %s", c.config.StateFile)
	}

	log.WithDuration(a.Duration).Infof("Analyzed %d records: %d endpoints, %d auth patterns",
		res.Stats.RecordsSeen, res.Stats.Endpoints, res.Stats.AuthPatterns)

	if err := c.writeMetrics(log); err != nil {
		return nil, err
	}
	return a, nil
}

// Create analyzes a trace and writes the generated package below the output
// directory. Nothing is written when the trace cannot be loaded; a write
// failure leaves already-written files in place.
func (c *Creator) Create(ctx context.Context, path string) (*Result, error) {
	runID := uuid.NewString()
	log := c.logger.WithRunID(runID).WithFile(path)

	a, err := c.analyze(ctx, path, runID, log)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	gen := generator.New(generator.Options{
		Prefix:  c.config.Prefix,
		OpenAPI: c.config.OpenAPI,
		Now:     c.now,
	})

	artifacts, err := gen.Generate(a.Model)
	if err != nil {
		log.ErrorEvent(err, c.config.OutputDir, "generate")
		return nil, err
	}
	log.StageEvent("generate", len(artifacts))

	writer := c.writer
	if writer == nil {
		writer = output.NewDirWriter(c.config.OutputDir, log.WithComponent("writer"), c.metrics)
	}

	files, err := writer.WriteArtifacts(artifacts)
	if err != nil {
		log.ErrorEvent(err, c.config.OutputDir, "write")
		return nil, err
	}
	c.metrics.ObserveStage("generate", time.Since(start))
	log.StatsEvent(c.metrics.Snapshot().Summary())

	if err := c.writeMetrics(log); err != nil {
		return nil, err
	}

	return &Result{
		Analysis:  a,
		ServerDir: filepath.Join(c.config.OutputDir, gen.ServerDir(a.Model)),
		Files:     files,
	}, nil
}

func (c *Creator) writeMetrics(log *logger.Logger) error {
	if c.config.MetricsFile == "" {
		return nil
	}
	if err := c.metrics.WriteToTextfile(c.config.MetricsFile); err != nil {
		log.ErrorEvent(err, c.config.MetricsFile, "write_metrics")
		return errors.NewGenerationError(c.config.MetricsFile, "write_metrics", err)
	}
	return nil
}

// LoadSnapshot reads the analysis saved at path.
func LoadSnapshot(path string) (*state.Snapshot, error) {
	return state.LoadSnapshot(path)
}
