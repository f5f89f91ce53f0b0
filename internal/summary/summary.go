// Package summary computes descriptive statistics over sampled readings.
//
// Summaries describe a run's output; they never choose the reading that
// represents a bucket. Percentiles come from a DDSketch with 1% relative
// accuracy.
package summary

import (
	"math"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/xtxerr/sampler/internal/measurement"
	"github.com/xtxerr/sampler/internal/sampling"
)

// DefaultAccuracy is the relative accuracy of percentile estimates.
const DefaultAccuracy = 0.01

// Summary holds the statistics of one kind.
type Summary struct {
	Kind  measurement.Kind
	Count int64

	// Skipped counts readings left out because their value could not be
	// summarized.
	Skipped int64

	Min float64
	Max float64
	Avg float64

	// Percentiles, zero when Count is 0.
	P50 float64
	P90 float64
	P99 float64

	// First and Last are the earliest and latest reading times.
	First time.Time
	Last  time.Time
}

// Empty returns true if the summary covers no readings.
func (s Summary) Empty() bool {
	return s.Count == 0
}

// Accumulator maintains running statistics for one kind.
// It is not safe for concurrent use.
type Accumulator struct {
	kind measurement.Kind

	count   int64
	skipped int64
	sum     float64
	min   float64
	max   float64
	first time.Time
	last  time.Time

	// nil if the sketch could not be created
	sketch *ddsketch.DDSketch
}

// NewAccumulator creates an accumulator with DefaultAccuracy.
func NewAccumulator(kind measurement.Kind) *Accumulator {
	return NewAccumulatorWithAccuracy(kind, DefaultAccuracy)
}

// NewAccumulatorWithAccuracy creates an accumulator with a custom
// percentile accuracy. An invalid accuracy disables percentiles.
func NewAccumulatorWithAccuracy(kind measurement.Kind, accuracy float64) *Accumulator {
	a := &Accumulator{
		kind: kind,
		min:  math.MaxFloat64,
		max:  -math.MaxFloat64,
	}

	sketch, err := ddsketch.NewDefaultDDSketch(accuracy)
	if err == nil {
		a.sketch = sketch
	}

	return a
}

// Add adds a reading and reports whether it was counted. NaN values and
// values the sketch cannot index (infinities, magnitudes near
// math.MaxFloat64) are skipped entirely.
func (a *Accumulator) Add(r measurement.Reading) bool {
	if math.IsNaN(r.Value) {
		a.skipped++
		return false
	}
	if a.sketch != nil {
		if err := a.sketch.Add(r.Value); err != nil {
			a.skipped++
			return false
		}
	}

	a.count++
	a.sum += r.Value

	if r.Value < a.min {
		a.min = r.Value
	}
	if r.Value > a.max {
		a.max = r.Value
	}

	if a.first.IsZero() || r.Time.Before(a.first) {
		a.first = r.Time
	}
	if r.Time.After(a.last) {
		a.last = r.Time
	}

	return true
}

// Result returns the statistics gathered so far.
func (a *Accumulator) Result() Summary {
	s := Summary{
		Kind:    a.kind,
		Count:   a.count,
		Skipped: a.skipped,
	}
	if a.count == 0 {
		return s
	}

	s.Min = a.min
	s.Max = a.max
	s.Avg = a.sum / float64(a.count)
	s.First = a.first
	s.Last = a.last

	if a.sketch != nil {
		s.P50, _ = a.sketch.GetValueAtQuantile(0.50)
		s.P90, _ = a.sketch.GetValueAtQuantile(0.90)
		s.P99, _ = a.sketch.GetValueAtQuantile(0.99)
	}

	return s
}

// Of summarizes a sampling result per known kind. Every kind has an
// entry, possibly empty.
func Of(result sampling.Result) map[measurement.Kind]Summary {
	out := make(map[measurement.Kind]Summary, len(measurement.Kinds()))
	for _, k := range measurement.Kinds() {
		acc := NewAccumulator(k)
		for _, r := range result[k] {
			acc.Add(r)
		}
		out[k] = acc.Result()
	}
	return out
}
