package measurement

import "time"

// Reading is a single timestamped observation from a device.
// Readings are treated as values: the sampler never modifies the readings
// it is given, it only builds new ones.
type Reading struct {
	Time  time.Time
	Value float64
	Kind  Kind
}

// New returns a reading.
func New(ts time.Time, value float64, kind Kind) Reading {
	return Reading{Time: ts, Value: value, Kind: kind}
}

// TimeMs returns the timestamp as Unix milliseconds.
func (r Reading) TimeMs() int64 {
	return r.Time.UnixMilli()
}

// Equal reports whether r and o describe the same instant, value and kind.
func (r Reading) Equal(o Reading) bool {
	return r.Time.Equal(o.Time) && r.Value == o.Value && r.Kind == o.Kind
}
