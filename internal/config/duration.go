package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sosodev/duration"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that decodes from Go syntax ("5m", "90s")
// or ISO 8601 ("PT5M", "PT1H30M").
// It implements flag.Value so the same syntax works on the command line.
type Duration time.Duration

// ParseDuration parses Go or ISO 8601 duration syntax.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	iso, err := duration.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("duration %q: want Go (5m) or ISO 8601 (PT5M) syntax", s)
	}
	return iso.ToTimeDuration(), nil
}

// Duration returns d as a time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String returns d in Go syntax.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// ISO8601 returns d in ISO 8601 syntax.
func (d Duration) ISO8601() string {
	return duration.Format(time.Duration(d))
}

// Set implements flag.Value.
func (d *Duration) Set(s string) error {
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.Set(s)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}
