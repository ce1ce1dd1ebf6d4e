// Package metrics counts what the pipeline does with a trace. Counters live
// in a private Prometheus registry so concurrent runs in one process never
// share state.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Namespace prefixes every metric name.
const Namespace = "mcpcreator"

// Collector collects pipeline metrics.
type Collector struct {
	registry *prometheus.Registry

	recordsTotal   prometheus.Counter
	recordsSkipped *prometheus.CounterVec
	endpointsTotal prometheus.Counter
	mergesTotal    prometheus.Counter
	authPatterns   prometheus.Counter
	redactions     prometheus.Counter
	artifactsTotal prometheus.Counter
	artifactBytes  prometheus.Counter
	stageDuration  *prometheus.HistogramVec

	startTime time.Time
}

// New creates a new metrics collector with its own registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		recordsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "records_total",
			Help:      "Trace records read",
		}),
		recordsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "records_skipped_total",
			Help:      "Trace records excluded from inference, by reason",
		}, []string{"reason"}),
		endpointsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "endpoints_total",
			Help:      "Distinct endpoints inferred",
		}),
		mergesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "endpoint_merges_total",
			Help:      "Observations merged into an existing endpoint",
		}),
		authPatterns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "auth_patterns_total",
			Help:      "Distinct authentication patterns detected",
		}),
		redactions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "redactions_total",
			Help:      "Secret values replaced in examples",
		}),
		artifactsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "artifacts_written_total",
			Help:      "Generated files written",
		}),
		artifactBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "artifact_bytes_total",
			Help:      "Bytes of generated files written",
		}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"stage"}),
		startTime: time.Now(),
	}
}

// RecordRecord counts one trace record.
func (c *Collector) RecordRecord() {
	c.recordsTotal.Inc()
}

// RecordSkipped counts one excluded record.
func (c *Collector) RecordSkipped(reason string) {
	c.recordsSkipped.WithLabelValues(reason).Inc()
}

// RecordEndpoint counts one new endpoint.
func (c *Collector) RecordEndpoint() {
	c.endpointsTotal.Inc()
}

// RecordMerge counts one merged observation.
func (c *Collector) RecordMerge() {
	c.mergesTotal.Inc()
}

// RecordAuthPatterns adds newly detected auth patterns.
func (c *Collector) RecordAuthPatterns(n int) {
	c.authPatterns.Add(float64(n))
}

// RecordRedactions adds replaced secret values.
func (c *Collector) RecordRedactions(n int) {
	c.redactions.Add(float64(n))
}

// RecordArtifact counts one written file.
func (c *Collector) RecordArtifact(size int) {
	c.artifactsTotal.Inc()
	c.artifactBytes.Add(float64(size))
}

// ObserveStage records the duration of a pipeline stage.
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	c.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteToTextfile writes all metrics in the Prometheus text format, for the
// node exporter textfile collector.
func (c *Collector) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

// Snapshot returns a point-in-time view of the counters.
func (c *Collector) Snapshot() *Snapshot {
	s := &Snapshot{
		Timestamp:      time.Now(),
		Uptime:         time.Since(c.startTime),
		RecordsTotal:   counterValue(c.recordsTotal),
		EndpointsTotal: counterValue(c.endpointsTotal),
		MergesTotal:    counterValue(c.mergesTotal),
		AuthPatterns:   counterValue(c.authPatterns),
		Redactions:     counterValue(c.redactions),
		ArtifactsTotal: counterValue(c.artifactsTotal),
		ArtifactBytes:  counterValue(c.artifactBytes),
		RecordsSkipped: make(map[string]int64),
	}

	ch := make(chan prometheus.Metric, 16)
	go func() {
		c.recordsSkipped.Collect(ch)
		close(ch)
	}()
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil {
			continue
		}
		for _, label := range m.GetLabel() {
			if label.GetName() == "reason" {
				s.RecordsSkipped[label.GetValue()] = int64(m.GetCounter().GetValue())
			}
		}
	}

	return s
}

func counterValue(counter prometheus.Counter) int64 {
	m := &dto.Metric{}
	if err := counter.Write(m); err != nil {
		return 0
	}
	return int64(m.GetCounter().GetValue())
}

// Snapshot represents a point-in-time view of metrics.
type Snapshot struct {
	Timestamp      time.Time        `json:"timestamp"`
	Uptime         time.Duration    `json:"uptime"`
	RecordsTotal   int64            `json:"records_total"`
	RecordsSkipped map[string]int64 `json:"records_skipped"`
	EndpointsTotal int64            `json:"endpoints_total"`
	MergesTotal    int64            `json:"merges_total"`
	AuthPatterns   int64            `json:"auth_patterns"`
	Redactions     int64            `json:"redactions"`
	ArtifactsTotal int64            `json:"artifacts_total"`
	ArtifactBytes  int64            `json:"artifact_bytes"`
}

// SkippedTotal returns the number of excluded records.
func (s *Snapshot) SkippedTotal() int64 {
	var total int64
	for _, n := range s.RecordsSkipped {
		total += n
	}
	return total
}

// Summary returns a flat map suitable for structured logging. Skip reasons
// appear as skipped_<reason>.
func (s *Snapshot) Summary() map[string]interface{} {
	out := map[string]interface{}{
		"records":   s.RecordsTotal,
		"skipped":   s.SkippedTotal(),
		"endpoints": s.EndpointsTotal,
		"merges":    s.MergesTotal,
		"auth":      s.AuthPatterns,
		"redacted":  s.Redactions,
		"artifacts": s.ArtifactsTotal,
	}

	for reason, n := range s.RecordsSkipped {
		out["skipped_"+reason] = n
	}
	return out
}
