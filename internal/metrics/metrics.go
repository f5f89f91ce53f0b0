// Package metrics exposes run metrics of the sampler in Prometheus format.
//
// The sampler is a batch job, so metrics are not served over HTTP. They are
// written to a textfile after each run for collection by node_exporter's
// textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/measurement"
	"github.com/xtxerr/sampler/internal/summary"
)

// Metrics holds the collectors of one sampler process.
type Metrics struct {
	registry *prometheus.Registry

	readingsLoaded   prometheus.Counter
	readingsFiltered prometheus.Counter
	readingsSampled  *prometheus.CounterVec
	sampledValue     *prometheus.GaugeVec
	runsTotal        *prometheus.CounterVec
	runDuration      prometheus.Gauge
	lastRun          prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		readingsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sampler_readings_loaded_total",
			Help: "Total readings loaded from the source.",
		}),
		readingsFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sampler_readings_filtered_total",
			Help: "Total readings dropped for lying before the sampling start.",
		}),
		readingsSampled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sampler_readings_sampled_total",
			Help: "Total sampled readings emitted by kind.",
		}, []string{"kind"}),
		sampledValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sampler_sampled_value",
			Help: "Statistics of the sampled values of the last run by kind.",
		}, []string{"kind", "stat"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sampler_runs_total",
			Help: "Total sampling runs by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sampler_run_duration_seconds",
			Help: "Duration of the last sampling run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sampler_last_run_timestamp_seconds",
			Help: "Unix time the last sampling run finished.",
		}),
	}

	m.registry.MustRegister(
		m.readingsLoaded,
		m.readingsFiltered,
		m.readingsSampled,
		m.sampledValue,
		m.runsTotal,
		m.runDuration,
		m.lastRun,
	)

	// Export every kind even before the first run.
	for _, k := range measurement.Kinds() {
		m.readingsSampled.WithLabelValues(k.String())
	}

	return m
}

// Registry returns the registry holding the sampler collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveLoaded records readings loaded from the source.
func (m *Metrics) ObserveLoaded(n int) {
	m.readingsLoaded.Add(float64(n))
}

// ObserveFiltered records readings dropped before the sampling start.
func (m *Metrics) ObserveFiltered(n int) {
	m.readingsFiltered.Add(float64(n))
}

// ObserveSampled records sampled readings emitted for kind.
func (m *Metrics) ObserveSampled(kind measurement.Kind, n int) {
	m.readingsSampled.WithLabelValues(kind.String()).Add(float64(n))
}

// ObserveSummary sets the value statistics of a kind. Empty summaries
// remove the series so stale values are not exported.
func (m *Metrics) ObserveSummary(s summary.Summary) {
	stats := []struct {
		name  string
		value float64
	}{
		{"min", s.Min},
		{"max", s.Max},
		{"avg", s.Avg},
		{"p50", s.P50},
		{"p90", s.P90},
		{"p99", s.P99},
	}

	for _, st := range stats {
		if s.Empty() {
			m.sampledValue.DeleteLabelValues(s.Kind.String(), st.name)
			continue
		}
		m.sampledValue.WithLabelValues(s.Kind.String(), st.name).Set(st.value)
	}
}

// ObserveRun records a finished run. The result label is the exit code
// name of err, "OK" on success.
func (m *Metrics) ObserveRun(duration time.Duration, err error) {
	m.runsTotal.WithLabelValues(errors.CodeName(errors.ExitCode(err))).Inc()
	m.runDuration.Set(duration.Seconds())
	m.lastRun.SetToCurrentTime()
}

// WriteTextfile writes all collectors to path in the Prometheus text format.
// The file is written atomically through a temporary file.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "write metrics textfile %s", path)
	}
	return nil
}
