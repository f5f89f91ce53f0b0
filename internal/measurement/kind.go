package measurement

import (
	"fmt"
	"strings"

	"github.com/xtxerr/sampler/internal/errors"
)

// Kind identifies the category of a reading.
type Kind int

const (
	// KindTemp is body temperature in degrees Celsius.
	KindTemp Kind = iota

	// KindSpO2 is peripheral oxygen saturation in percent.
	KindSpO2
)

// kinds is the registered list of known kinds, in output order.
// Adding a kind means adding a constant above and a row here.
var kinds = []Kind{KindTemp, KindSpO2}

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTemp:
		return "TEMP"
	case KindSpO2:
		return "SpO2"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// IsValid returns true if k is a registered kind.
func (k Kind) IsValid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind parses a kind name. Matching is case-insensitive so that
// "TEMP", "temp" and "spO2" are all accepted.
func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if strings.EqualFold(k.String(), strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return KindTemp, fmt.Errorf("%q: %w", s, errors.ErrUnknownKind)
}

// Kinds returns all known kinds in order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("kind %d: %w", int(k), errors.ErrUnknownKind)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
