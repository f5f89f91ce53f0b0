package summary

import (
	"math"
	"testing"
	"time"

	"github.com/xtxerr/sampler/internal/measurement"
	"github.com/xtxerr/sampler/internal/sampling"
)

func within(got, want, rel float64) bool {
	return math.Abs(got-want) <= math.Abs(want)*rel
}

func TestAccumulatorBasic(t *testing.T) {
	base := time.Date(2017, 1, 3, 10, 0, 0, 0, time.UTC)
	acc := NewAccumulator(measurement.KindTemp)

	for i := 1; i <= 100; i++ {
		acc.Add(measurement.New(base.Add(time.Duration(i)*time.Minute), float64(i), measurement.KindTemp))
	}

	s := acc.Result()
	if s.Kind != measurement.KindTemp {
		t.Errorf("expected TEMP, got %s", s.Kind)
	}
	if s.Count != 100 {
		t.Errorf("expected count 100, got %d", s.Count)
	}
	if s.Min != 1 || s.Max != 100 {
		t.Errorf("expected min 1 max 100, got %v %v", s.Min, s.Max)
	}
	if s.Avg != 50.5 {
		t.Errorf("expected avg 50.5, got %v", s.Avg)
	}
	if !s.First.Equal(base.Add(time.Minute)) || !s.Last.Equal(base.Add(100*time.Minute)) {
		t.Errorf("unexpected time range %v .. %v", s.First, s.Last)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"p50", s.P50, 50},
		{"p90", s.P90, 90},
		{"p99", s.P99, 99},
	}
	for _, tt := range tests {
		// 1% sketch accuracy plus one rank of slack
		if !within(tt.got, tt.want, 0.03) {
			t.Errorf("%s: expected ~%v, got %v", tt.name, tt.want, tt.got)
		}
	}
}

func TestAccumulatorEmpty(t *testing.T) {
	s := NewAccumulator(measurement.KindSpO2).Result()
	if !s.Empty() {
		t.Errorf("expected empty summary, got count %d", s.Count)
	}
	if s.Min != 0 || s.Max != 0 || s.P50 != 0 {
		t.Errorf("empty summary should be zero, got %+v", s)
	}
}

func TestAccumulatorSkipsUnsummarizable(t *testing.T) {
	tests := []struct {
		name  string
		value float64
	}{
		{"nan", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
		{"max float", math.MaxFloat64},
	}

	for _, tt := range tests {
		acc := NewAccumulator(measurement.KindTemp)
		if acc.Add(measurement.New(time.Unix(0, 0), tt.value, measurement.KindTemp)) {
			t.Errorf("%s: expected reading to be skipped", tt.name)
		}
		if !acc.Add(measurement.New(time.Unix(60, 0), 36.5, measurement.KindTemp)) {
			t.Errorf("%s: expected 36.5 to be counted", tt.name)
		}

		s := acc.Result()
		if s.Count != 1 || s.Skipped != 1 {
			t.Errorf("%s: expected count 1 skipped 1, got %d %d", tt.name, s.Count, s.Skipped)
		}
		if s.Min != 36.5 || s.Max != 36.5 || s.Avg != 36.5 {
			t.Errorf("%s: unexpected summary %+v", tt.name, s)
		}
		if !within(s.P50, 36.5, DefaultAccuracy) {
			t.Errorf("%s: expected p50 ~36.5, got %v", tt.name, s.P50)
		}
		if !s.First.Equal(time.Unix(60, 0)) {
			t.Errorf("%s: skipped reading moved the time range: %v", tt.name, s.First)
		}
	}
}

func TestInvalidAccuracyDisablesPercentiles(t *testing.T) {
	acc := NewAccumulatorWithAccuracy(measurement.KindTemp, 2)
	acc.Add(measurement.New(time.Unix(0, 0), 36.5, measurement.KindTemp))

	s := acc.Result()
	if s.Count != 1 || s.Avg != 36.5 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.P50 != 0 {
		t.Errorf("expected no percentiles, got p50 %v", s.P50)
	}
}

func TestOf(t *testing.T) {
	at := func(hhmm string) time.Time {
		ts, err := time.Parse("2006-01-02T15:04", "2017-01-03T"+hhmm)
		if err != nil {
			t.Fatalf("parse %s: %v", hhmm, err)
		}
		return ts
	}

	result := sampling.Result{
		measurement.KindTemp: {
			measurement.New(at("10:05"), 35.79, measurement.KindTemp),
			measurement.New(at("10:10"), 35.01, measurement.KindTemp),
		},
		measurement.KindSpO2: {},
	}

	summaries := Of(result)
	if len(summaries) != len(measurement.Kinds()) {
		t.Fatalf("expected one summary per kind, got %d", len(summaries))
	}

	temp := summaries[measurement.KindTemp]
	if temp.Count != 2 || temp.Min != 35.01 || temp.Max != 35.79 {
		t.Errorf("unexpected TEMP summary %+v", temp)
	}
	if !temp.Last.Equal(at("10:10")) {
		t.Errorf("expected last 10:10, got %v", temp.Last)
	}

	if !summaries[measurement.KindSpO2].Empty() {
		t.Errorf("expected empty SpO2 summary, got %+v", summaries[measurement.KindSpO2])
	}
}
