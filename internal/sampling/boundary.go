package sampling

import (
	"math/bits"
	"time"
)

// Boundary returns the right edge of the bucket that contains ts.
//
// Buckets have width interval and tile the whole timeline starting at start,
// so times before start have boundaries too. A timestamp that lies exactly
// on a boundary is its own boundary. The result is expressed in start's
// location. interval must be positive.
func Boundary(ts time.Time, interval time.Duration, start time.Time) time.Time {
	loc := start.Location()

	if ts.Before(start) {
		// Stepping back from start, the distance to the next boundary at
		// or after ts is what is left over after whole intervals.
		delta := spanMod(ts, start, interval)
		return ts.Add(delta).In(loc)
	}

	rem := spanMod(start, ts, interval)
	if rem == 0 {
		return ts.In(loc)
	}
	return ts.Add(interval - rem).In(loc)
}

// spanMod returns (to - from) mod interval in [0, interval).
// time.Time.Sub saturates after about 292 years, so the span is taken
// apart into Unix seconds and nanoseconds and reduced piecewise.
func spanMod(from, to time.Time, interval time.Duration) time.Duration {
	l := uint64(interval)

	secs := floorMod(to.Unix()-from.Unix(), int64(interval))
	hi, lo := bits.Mul64(secs, uint64(time.Second))
	r := bits.Rem64(hi, lo, l)

	nanos := floorMod(int64(to.Nanosecond())-int64(from.Nanosecond()), int64(interval))
	r += nanos
	if r >= l {
		r -= l
	}
	return time.Duration(r)
}

// floorMod returns a mod m in [0, m) as unsigned. m must be positive.
func floorMod(a, m int64) uint64 {
	r := a % m
	if r < 0 {
		r += m
	}
	return uint64(r)
}

// BucketFunc maps a reading time to its bucket key.
// Keys are compared with ==, so they must not carry a monotonic clock
// reading and equal instants must share a location. Boundary satisfies both.
type BucketFunc func(ts time.Time) time.Time

// Buckets returns a BucketFunc for the given interval and start.
func Buckets(interval time.Duration, start time.Time) BucketFunc {
	return func(ts time.Time) time.Time {
		return Boundary(ts, interval, start)
	}
}
