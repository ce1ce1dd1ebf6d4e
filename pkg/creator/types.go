package creator

import (
	"time"

	"github.com/PentesterFlow/mcpcreator/internal/model"
	"github.com/PentesterFlow/mcpcreator/internal/output"
	"github.com/PentesterFlow/mcpcreator/internal/state"
)

// Analysis is the inferred model of one trace.
type Analysis struct {
	RunID     string
	Source    string
	CreatedAt time.Time
	Model     *model.ServiceModel
	Stats     state.Stats
	Duration  time.Duration

	prefix string
}

// ServerName returns the name of the package the model generates.
func (a *Analysis) ServerName() string {
	return a.Model.ServerName(a.prefix)
}

// EnvPrefix returns the environment variable prefix of the generated package.
func (a *Analysis) EnvPrefix() string {
	return a.Model.EnvPrefix()
}

// Report returns the machine-readable summary of the analysis.
func (a *Analysis) Report() *output.Report {
	stats := a.Stats
	return output.NewReport(a.Model, a.prefix).WithRun(a.RunID, &stats)
}

// Snapshot returns the analysis in its persisted form.
func (a *Analysis) Snapshot() *state.Snapshot {
	return &state.Snapshot{
		RunID:     a.RunID,
		CreatedAt: a.CreatedAt,
		Source:    a.Source,
		Stats:     a.Stats,
		Model:     *a.Model,
	}
}

// Result is the outcome of Create.
type Result struct {
	*Analysis

	// ServerDir is the directory holding the generated package.
	ServerDir string

	// Files lists every written artifact.
	Files []string
}
