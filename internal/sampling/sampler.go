package sampling

import (
	"fmt"
	"sync"
	"time"

	"github.com/xtxerr/sampler/config"
	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/measurement"
	"golang.org/x/sync/errgroup"
)

// Result maps every known kind to its sampled readings, ordered by time.
// Kinds without qualifying input map to an empty, non-nil slice.
type Result map[measurement.Kind][]measurement.Reading

// Len returns the total number of sampled readings across all kinds.
func (r Result) Len() int {
	n := 0
	for _, readings := range r {
		n += len(readings)
	}
	return n
}

// Options configures a Sampler.
type Options struct {
	// Aggregator reduces each bucket. Defaults to LatestInBucket.
	Aggregator Aggregator

	// ParallelKinds is the number of kinds sampled concurrently.
	// Values below 2 sample all kinds on the calling goroutine.
	ParallelKinds int
}

// DefaultOptions returns default sampler options.
func DefaultOptions() Options {
	return Options{
		Aggregator:    LatestInBucket,
		ParallelKinds: config.DefaultParallelKinds,
	}
}

// Sampler downsamples readings per kind into buckets of a fixed interval.
// A Sampler holds no mutable state and is safe for concurrent use.
type Sampler struct {
	interval  time.Duration
	aggregate Aggregator
	parallel  int
}

// New creates a sampler with the given bucket interval.
// A non-positive interval is rejected with errors.ErrInvalidInterval.
func New(interval time.Duration, opts Options) (*Sampler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval %v must be positive: %w", interval, errors.ErrInvalidInterval)
	}

	agg := opts.Aggregator
	if agg == nil {
		agg = LatestInBucket
	}

	return &Sampler{
		interval:  interval,
		aggregate: agg,
		parallel:  opts.ParallelKinds,
	}, nil
}

// NewDefault creates a sampler with the default 5 minute interval.
func NewDefault() *Sampler {
	s, err := New(config.DefaultSamplingInterval, DefaultOptions())
	if err != nil {
		// The default interval is a positive constant.
		panic(err)
	}
	return s
}

// Interval returns the bucket width.
func (s *Sampler) Interval() time.Duration {
	return s.interval
}

// Sample drops readings before start, then buckets and aggregates the rest
// separately for every known kind. The input slice is not modified.
// A panic in the aggregator reaches the caller in both sequential and
// parallel mode.
func (s *Sampler) Sample(start time.Time, readings []measurement.Reading) Result {
	filtered := FilterFrom(readings, start)
	bucket := Buckets(s.interval, start)
	kinds := measurement.Kinds()

	sampled := make([][]measurement.Reading, len(kinds))
	sampleKind := func(i int) {
		sampled[i] = Downsample(FilterKind(filtered, kinds[i]), bucket, s.aggregate)
	}

	if s.parallel > 1 && len(kinds) > 1 {
		// Each goroutine reads a disjoint subset and writes its own slot.
		// A panicking aggregator is re-raised on the calling goroutine.
		var (
			g        errgroup.Group
			mu       sync.Mutex
			panicked any
		)
		g.SetLimit(s.parallel)
		for i := range kinds {
			i := i
			g.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						mu.Lock()
						if panicked == nil {
							panicked = r
						}
						mu.Unlock()
					}
				}()
				sampleKind(i)
				return nil
			})
		}
		_ = g.Wait()
		if panicked != nil {
			panic(panicked)
		}
	} else {
		for i := range kinds {
			sampleKind(i)
		}
	}

	result := make(Result, len(kinds))
	for i, k := range kinds {
		result[k] = sampled[i]
	}
	return result
}

// Downsample groups readings by bucket, orders the buckets ascending and
// reduces each one with aggregate. The returned slice is never nil.
func Downsample(readings []measurement.Reading, bucket BucketFunc, aggregate Aggregator) []measurement.Reading {
	groups := GroupBy(readings,
		func(r measurement.Reading) time.Time { return bucket(r.Time) },
		func(a, b time.Time) int { return a.Compare(b) },
	)

	out := make([]measurement.Reading, 0, len(groups))
	for _, g := range groups {
		out = append(out, aggregate(g.Key, g.Items))
	}
	return out
}

// FilterFrom returns the readings at or after start.
func FilterFrom(readings []measurement.Reading, start time.Time) []measurement.Reading {
	out := make([]measurement.Reading, 0, len(readings))
	for _, r := range readings {
		if !r.Time.Before(start) {
			out = append(out, r)
		}
	}
	return out
}

// FilterKind returns the readings of the given kind.
func FilterKind(readings []measurement.Reading, kind measurement.Kind) []measurement.Reading {
	out := make([]measurement.Reading, 0, len(readings))
	for _, r := range readings {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
