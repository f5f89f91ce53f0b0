package sampling

import (
	"time"

	"github.com/xtxerr/sampler/internal/measurement"
)

// Aggregator reduces the readings of one bucket to a single reading.
// It is only called with non-empty groups.
type Aggregator func(boundary time.Time, group []measurement.Reading) measurement.Reading

// LatestInBucket returns a reading stamped with the bucket boundary that
// carries the value and kind of the most recent reading in the group.
// When several readings share the most recent time, the first one in input
// order wins.
func LatestInBucket(boundary time.Time, group []measurement.Reading) measurement.Reading {
	if len(group) == 0 {
		panic("sampling: aggregate called with empty group")
	}

	latest := group[0]
	for _, r := range group[1:] {
		if r.Time.After(latest.Time) {
			latest = r
		}
	}

	return measurement.Reading{
		Time:  boundary,
		Value: latest.Value,
		Kind:  latest.Kind,
	}
}
