package measurement

import (
	"fmt"
	"strings"
	"time"

	"github.com/relvacode/iso8601"
	"github.com/xtxerr/sampler/internal/errors"
)

// TimeLayout is the sortable layout used for presenting timestamps.
const TimeLayout = "2006-01-02T15:04:05"

// fallbackLayouts are tried in order when s is not ISO 8601.
// Layouts without a zone are read as UTC.
var fallbackLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04",
}

// ParseTime parses an ISO 8601 timestamp such as "2017-01-03T10:04:45" or
// "2017-01-03T10:04:45+01:00". Timestamps without a zone are read as UTC.
// A space in place of the "T" separator is accepted as well.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := iso8601.ParseString(s); err == nil {
		return ts, nil
	}
	for _, layout := range fallbackLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q: %w", s, errors.ErrInvalidTime)
}

// MustParseTime is like ParseTime but panics on error.
// It is intended for tests and constant fixtures.
func MustParseTime(s string) time.Time {
	ts, err := ParseTime(s)
	if err != nil {
		panic(err)
	}
	return ts
}

// FormatTime renders ts in TimeLayout.
func FormatTime(ts time.Time) string {
	return ts.Format(TimeLayout)
}
