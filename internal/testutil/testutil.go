// Package testutil provides test utilities for the sampler project:
// reading fixtures and a goroutine-safe error collector.
package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/xtxerr/sampler/internal/measurement"
)

// =============================================================================
// Reading Fixtures
// =============================================================================

// Reading builds a reading from a zone-less timestamp such as
// "2017-01-03T10:04:45". It fails the test on a bad timestamp.
func Reading(t testing.TB, ts string, value float64, kind measurement.Kind) measurement.Reading {
	t.Helper()
	parsed, err := measurement.ParseTime(ts)
	if err != nil {
		t.Fatalf("fixture timestamp %q: %v", ts, err)
	}
	return measurement.New(parsed, value, kind)
}

// Time parses a zone-less timestamp and fails the test on error.
func Time(t testing.TB, ts string) time.Time {
	t.Helper()
	parsed, err := measurement.ParseTime(ts)
	if err != nil {
		t.Fatalf("fixture timestamp %q: %v", ts, err)
	}
	return parsed
}

// DeviceReadings returns the eight readings of the reference monitor
// export: four TEMP and four SpO2 readings, unordered, one before 10:00.
func DeviceReadings(t testing.TB) []measurement.Reading {
	t.Helper()
	return []measurement.Reading{
		Reading(t, "2017-01-03T09:04:45", 35.79, measurement.KindTemp),
		Reading(t, "2017-01-03T10:04:45", 35.79, measurement.KindTemp),
		Reading(t, "2017-01-03T10:01:18", 98.78, measurement.KindSpO2),
		Reading(t, "2017-01-03T10:09:07", 35.01, measurement.KindTemp),
		Reading(t, "2017-01-03T10:03:34", 96.49, measurement.KindSpO2),
		Reading(t, "2017-01-03T10:02:01", 35.82, measurement.KindTemp),
		Reading(t, "2017-01-03T10:05:00", 97.17, measurement.KindSpO2),
		Reading(t, "2017-01-03T10:05:01", 95.08, measurement.KindSpO2),
	}
}

// AssertReadings compares got against want reading by reading.
func AssertReadings(t testing.TB, got, want []measurement.Reading) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d readings, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("index %d: expected {%s, %s, %.2f}, got {%s, %s, %.2f}", i,
				measurement.FormatTime(want[i].Time), want[i].Kind, want[i].Value,
				measurement.FormatTime(got[i].Time), got[i].Kind, got[i].Value)
		}
	}
}

// =============================================================================
// Error Channel Pattern
// =============================================================================

// GoroutineTest provides safe testing utilities for goroutines.
//
// Using t.Fatal or t.FailNow in a goroutine causes the test to hang because
// these functions call runtime.Goexit() which only exits the current goroutine,
// not the test goroutine. Functions run with Go return errors instead; they
// are reported when Wait is called.
//
//	gt := testutil.NewGoroutineTest(t)
//	defer gt.Wait()
//
//	gt.Go(func() error {
//	    if got != want {
//	        return fmt.Errorf("got %v, want %v", got, want)
//	    }
//	    return nil
//	})
type GoroutineTest struct {
	t      *testing.T
	wg     sync.WaitGroup
	errors chan error
}

// NewGoroutineTest creates a new GoroutineTest helper.
func NewGoroutineTest(t *testing.T) *GoroutineTest {
	return &GoroutineTest{
		t:      t,
		errors: make(chan error, 100), // buffered to avoid blocking
	}
}

// Go runs a function in a goroutine and collects any errors.
func (gt *GoroutineTest) Go(fn func() error) {
	gt.wg.Add(1)
	go func() {
		defer gt.wg.Done()
		if err := fn(); err != nil {
			select {
			case gt.errors <- err:
			default:
				gt.t.Logf("Error channel full, dropping error: %v", err)
			}
		}
	}()
}

// Wait waits for all goroutines to complete and fails the test if any errors occurred.
func (gt *GoroutineTest) Wait() {
	gt.wg.Wait()
	close(gt.errors)

	var errs []error
	for err := range gt.errors {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		gt.t.Errorf("Goroutine test failed with %d error(s):", len(errs))
		for i, err := range errs {
			gt.t.Errorf("  [%d] %v", i+1, err)
		}
		gt.t.FailNow()
	}
}

// =============================================================================
// Assertion Helpers
// =============================================================================

// AssertEqual returns an error if got != want.
func AssertEqual[T comparable](got, want T, msg string) error {
	if got != want {
		return fmt.Errorf("%s: got %v, want %v", msg, got, want)
	}
	return nil
}
