package sampling

import (
	"slices"
	"testing"
	"time"

	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/measurement"
	"github.com/xtxerr/sampler/internal/testutil"
)

func TestNew_RejectsNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Minute} {
		s, err := New(interval, DefaultOptions())
		if !errors.Is(err, errors.ErrInvalidInterval) {
			t.Errorf("interval %v: expected ErrInvalidInterval, got %v", interval, err)
		}
		if s != nil {
			t.Errorf("interval %v: expected nil sampler", interval)
		}
	}
}

func TestNewDefault(t *testing.T) {
	s := NewDefault()
	if s.Interval() != 5*time.Minute {
		t.Errorf("expected default interval 5m, got %v", s.Interval())
	}
}

func TestSample_EmptyInput(t *testing.T) {
	s := NewDefault()

	result := s.Sample(testutil.Time(t, "2017-01-03T10:00:00"), nil)

	for _, kind := range measurement.Kinds() {
		readings, ok := result[kind]
		if !ok {
			t.Errorf("missing entry for kind %s", kind)
			continue
		}
		if readings == nil || len(readings) != 0 {
			t.Errorf("kind %s: expected empty non-nil slice, got %v", kind, readings)
		}
	}
	if len(result) != len(measurement.Kinds()) {
		t.Errorf("expected %d entries, got %d", len(measurement.Kinds()), len(result))
	}
}

func TestSample_DeviceExport(t *testing.T) {
	s := NewDefault()

	result := s.Sample(testutil.Time(t, "2017-01-03T10:00:00"), testutil.DeviceReadings(t))

	testutil.AssertReadings(t, result[measurement.KindTemp], []measurement.Reading{
		testutil.Reading(t, "2017-01-03T10:05:00", 35.79, measurement.KindTemp),
		testutil.Reading(t, "2017-01-03T10:10:00", 35.01, measurement.KindTemp),
	})
	testutil.AssertReadings(t, result[measurement.KindSpO2], []measurement.Reading{
		testutil.Reading(t, "2017-01-03T10:05:00", 97.17, measurement.KindSpO2),
		testutil.Reading(t, "2017-01-03T10:10:00", 95.08, measurement.KindSpO2),
	})

	if result.Len() != 4 {
		t.Errorf("expected 4 sampled readings, got %d", result.Len())
	}
}

func TestSample_StartAfterAllReadings(t *testing.T) {
	s := NewDefault()

	result := s.Sample(testutil.Time(t, "2017-01-04T10:00:00"), testutil.DeviceReadings(t))

	for _, kind := range measurement.Kinds() {
		if len(result[kind]) != 0 {
			t.Errorf("kind %s: expected no readings, got %v", kind, result[kind])
		}
	}
}

func TestSample_ExactBoundaryReading(t *testing.T) {
	s := NewDefault()
	readings := []measurement.Reading{
		testutil.Reading(t, "2017-01-03T12:07:00", 36.6, measurement.KindTemp),
	}

	result := s.Sample(testutil.Time(t, "2017-01-03T12:02:00"), readings)

	testutil.AssertReadings(t, result[measurement.KindTemp], []measurement.Reading{
		testutil.Reading(t, "2017-01-03T12:07:00", 36.6, measurement.KindTemp),
	})
}

func TestSample_ReadingAtStartIsKept(t *testing.T) {
	s := NewDefault()
	readings := []measurement.Reading{
		testutil.Reading(t, "2017-01-03T09:59:59", 1, measurement.KindTemp),
		testutil.Reading(t, "2017-01-03T10:00:00", 2, measurement.KindTemp),
	}

	result := s.Sample(testutil.Time(t, "2017-01-03T10:00:00"), readings)

	testutil.AssertReadings(t, result[measurement.KindTemp], []measurement.Reading{
		testutil.Reading(t, "2017-01-03T10:00:00", 2, measurement.KindTemp),
	})
}

func TestSample_OrderedAndFiltered(t *testing.T) {
	s, err := New(3*time.Minute, DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := testutil.Time(t, "2017-01-03T10:00:00")
	var readings []measurement.Reading
	// Deterministic shuffle of readings from 09:30 to 12:00.
	for i := 0; i < 300; i++ {
		offset := time.Duration((i*37)%300-60) * 30 * time.Second
		kind := measurement.KindTemp
		if i%3 == 0 {
			kind = measurement.KindSpO2
		}
		readings = append(readings, measurement.New(start.Add(offset), float64(i), kind))
	}
	input := slices.Clone(readings)

	result := s.Sample(start, readings)

	if !slices.EqualFunc(input, readings, measurement.Reading.Equal) {
		t.Fatal("input slice was modified")
	}

	for kind, sampled := range result {
		if len(sampled) == 0 {
			t.Errorf("kind %s: expected readings", kind)
		}
		for i, r := range sampled {
			if r.Kind != kind {
				t.Errorf("kind %s: reading %d has kind %s", kind, i, r.Kind)
			}
			if r.Time.Before(start) {
				t.Errorf("kind %s: reading %d at %v is before start", kind, i, r.Time)
			}
			if r.Time.Sub(start)%s.Interval() != 0 {
				t.Errorf("kind %s: reading %d at %v is not on a boundary", kind, i, r.Time)
			}
			if i > 0 && !sampled[i-1].Time.Before(r.Time) {
				t.Errorf("kind %s: readings %d and %d not strictly increasing", kind, i-1, i)
			}
		}
	}
}

func TestSample_ParallelMatchesSequential(t *testing.T) {
	sequential := NewDefault()
	parallel, err := New(5*time.Minute, Options{ParallelKinds: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := testutil.Time(t, "2017-01-03T10:00:00")
	readings := testutil.DeviceReadings(t)

	want := sequential.Sample(start, readings)

	gt := testutil.NewGoroutineTest(t)
	defer gt.Wait()

	for i := 0; i < 8; i++ {
		gt.Go(func() error {
			got := parallel.Sample(start, readings)
			for _, kind := range measurement.Kinds() {
				if err := testutil.AssertEqual(len(got[kind]), len(want[kind]), "count "+kind.String()); err != nil {
					return err
				}
				for j := range want[kind] {
					if !got[kind][j].Equal(want[kind][j]) {
						return testutil.AssertEqual(got[kind][j].Value, want[kind][j].Value, "value "+kind.String())
					}
				}
			}
			return nil
		})
	}
}

func TestSample_CustomAggregator(t *testing.T) {
	earliest := func(boundary time.Time, group []measurement.Reading) measurement.Reading {
		first := group[0]
		for _, r := range group[1:] {
			if r.Time.Before(first.Time) {
				first = r
			}
		}
		return measurement.New(boundary, first.Value, first.Kind)
	}

	s, err := New(5*time.Minute, Options{Aggregator: earliest})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result := s.Sample(testutil.Time(t, "2017-01-03T10:00:00"), testutil.DeviceReadings(t))

	testutil.AssertReadings(t, result[measurement.KindTemp], []measurement.Reading{
		testutil.Reading(t, "2017-01-03T10:05:00", 35.82, measurement.KindTemp),
		testutil.Reading(t, "2017-01-03T10:10:00", 35.01, measurement.KindTemp),
	})
}

func TestSample_ParallelPanicReachesCaller(t *testing.T) {
	boom := func(time.Time, []measurement.Reading) measurement.Reading {
		panic("boom")
	}
	s, err := New(5*time.Minute, Options{Aggregator: boom, ParallelKinds: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	defer func() {
		if r := recover(); r != "boom" {
			t.Errorf("expected panic boom on the calling goroutine, got %v", r)
		}
	}()
	s.Sample(testutil.Time(t, "2017-01-03T10:00:00"), testutil.DeviceReadings(t))
}

func TestDownsample_CustomBucketAndAggregator(t *testing.T) {
	readings := []measurement.Reading{
		testutil.Reading(t, "2017-01-03T10:01:01", 1, measurement.KindTemp),
		testutil.Reading(t, "2017-01-03T10:01:00", 2, measurement.KindTemp),
		testutil.Reading(t, "2017-01-03T10:02:00", 3, measurement.KindTemp),
		testutil.Reading(t, "2017-01-03T10:02:01", 4, measurement.KindTemp),
		testutil.Reading(t, "2017-01-03T10:03:01", 5, measurement.KindTemp),
		testutil.Reading(t, "2017-01-03T10:03:00", 6, measurement.KindTemp),
	}

	// Bucket by minute, keep the reading at second 1.
	byMinute := func(ts time.Time) time.Time { return ts.Truncate(time.Minute) }
	atSecondOne := func(_ time.Time, group []measurement.Reading) measurement.Reading {
		for _, r := range group {
			if r.Time.Second() == 1 {
				return r
			}
		}
		return group[0]
	}

	result := Downsample(readings, byMinute, atSecondOne)

	testutil.AssertReadings(t, result, []measurement.Reading{
		testutil.Reading(t, "2017-01-03T10:01:01", 1, measurement.KindTemp),
		testutil.Reading(t, "2017-01-03T10:02:01", 4, measurement.KindTemp),
		testutil.Reading(t, "2017-01-03T10:03:01", 5, measurement.KindTemp),
	})
}

func TestFilterFrom(t *testing.T) {
	readings := []measurement.Reading{
		testutil.Reading(t, "2017-01-03T09:59:59", 35.79, measurement.KindTemp),
		testutil.Reading(t, "2017-01-03T10:01:18", 98.78, measurement.KindSpO2),
		testutil.Reading(t, "2017-01-03T10:09:07", 35.01, measurement.KindTemp),
	}

	result := FilterFrom(readings, testutil.Time(t, "2017-01-03T10:00:00"))

	testutil.AssertReadings(t, result, readings[1:])
}

func TestFilterKind(t *testing.T) {
	readings := []measurement.Reading{
		testutil.Reading(t, "2017-01-03T10:04:45", 35.79, measurement.KindTemp),
		testutil.Reading(t, "2017-01-03T10:01:18", 98.78, measurement.KindSpO2),
		testutil.Reading(t, "2017-01-03T10:09:07", 35.01, measurement.KindTemp),
	}

	result := FilterKind(readings, measurement.KindTemp)

	testutil.AssertReadings(t, result, []measurement.Reading{readings[0], readings[2]})
}
