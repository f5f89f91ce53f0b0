// Package pipeline runs one load, sample and write pass.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/logging"
	"github.com/xtxerr/sampler/internal/measurement"
	"github.com/xtxerr/sampler/internal/metrics"
	"github.com/xtxerr/sampler/internal/sampling"
	"github.com/xtxerr/sampler/internal/sink"
	"github.com/xtxerr/sampler/internal/source"
	"github.com/xtxerr/sampler/internal/summary"
)

// Stats describes a finished run.
type Stats struct {
	// RunID identifies the run in logs.
	RunID string

	// ReadingsLoaded is the number of readings the source returned.
	ReadingsLoaded int

	// ReadingsFiltered is the number of readings dropped for lying
	// before the sampling start.
	ReadingsFiltered int

	// SampledPerKind is the number of sampled readings per kind.
	SampledPerKind map[measurement.Kind]int

	// Summaries describes the sampled values per kind.
	Summaries map[measurement.Kind]summary.Summary

	// Duration is the wall time of the run.
	Duration time.Duration
}

// Sampled returns the total number of sampled readings.
func (s Stats) Sampled() int {
	n := 0
	for _, c := range s.SampledPerKind {
		n += c
	}
	return n
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics records every run on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithLogger replaces the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// Pipeline wires a source, a sampler and a sink.
type Pipeline struct {
	source  source.Source
	sampler *sampling.Sampler
	sink    sink.Sink
	metrics *metrics.Metrics
	log     *slog.Logger
}

// New creates a pipeline. The sink is not closed by the pipeline.
func New(src source.Source, s *sampling.Sampler, out sink.Sink, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:  src,
		sampler: s,
		sink:    out,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logging.Component("pipeline")
	}
	return p
}

// Run loads all readings, samples them from start and writes the result.
// Source and sink errors are returned wrapped, so errors.ExitCode can tell
// them apart.
func (p *Pipeline) Run(ctx context.Context, start time.Time) (Stats, error) {
	runID := uuid.NewString()
	log := p.log.With("run_id", runID)

	began := time.Now()
	stats, err := p.run(ctx, log, start)
	stats.RunID = runID
	stats.Duration = time.Since(began)

	if p.metrics != nil {
		p.metrics.ObserveRun(stats.Duration, err)
	}

	if err != nil {
		log.Error("run failed", "source", p.source.Name(), "error", err, "duration", stats.Duration)
		return stats, err
	}

	log.Info("run complete",
		"source", p.source.Name(),
		"loaded", stats.ReadingsLoaded,
		"filtered", stats.ReadingsFiltered,
		"sampled", stats.Sampled(),
		"duration", stats.Duration,
	)
	return stats, nil
}

func (p *Pipeline) run(ctx context.Context, log *slog.Logger, start time.Time) (Stats, error) {
	stats := Stats{SampledPerKind: make(map[measurement.Kind]int)}

	readings, err := p.source.Load(ctx)
	if err != nil {
		return stats, fmt.Errorf("load %s: %w", p.source.Name(), err)
	}
	stats.ReadingsLoaded = len(readings)
	stats.ReadingsFiltered = len(readings) - len(sampling.FilterFrom(readings, start))
	log.Debug("readings loaded",
		"source", p.source.Name(),
		"count", stats.ReadingsLoaded,
		"before_start", stats.ReadingsFiltered,
	)

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	result, err := p.sample(start, readings)
	if err != nil {
		return stats, err
	}
	for _, k := range measurement.Kinds() {
		stats.SampledPerKind[k] = len(result[k])
	}
	stats.Summaries = summary.Of(result)
	for _, k := range measurement.Kinds() {
		s := stats.Summaries[k]
		if s.Empty() {
			continue
		}
		log.Debug("kind summary",
			"kind", k,
			"count", s.Count,
			"skipped", s.Skipped,
			"min", s.Min,
			"max", s.Max,
			"p50", s.P50,
		)
	}
	log.Debug("readings sampled",
		"start", measurement.FormatTime(start),
		"interval", p.sampler.Interval(),
		"count", result.Len(),
	)

	if p.metrics != nil {
		p.metrics.ObserveLoaded(stats.ReadingsLoaded)
		p.metrics.ObserveFiltered(stats.ReadingsFiltered)
		for k, n := range stats.SampledPerKind {
			p.metrics.ObserveSampled(k, n)
		}
		for _, s := range stats.Summaries {
			p.metrics.ObserveSummary(s)
		}
	}

	if err := p.sink.Write(ctx, result); err != nil {
		return stats, fmt.Errorf("write: %w", err)
	}

	return stats, nil
}

// sample runs the sampler and turns a panicking aggregator into
// errors.ErrInternal.
func (p *Pipeline) sample(start time.Time, readings []measurement.Reading) (result sampling.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sample: %w: panic: %v", errors.ErrInternal, r)
		}
	}()
	return p.sampler.Sample(start, readings), nil
}
