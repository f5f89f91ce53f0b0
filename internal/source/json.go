package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/logging"
	"github.com/xtxerr/sampler/internal/measurement"
)

// ReadingJSON is the on-disk shape of a reading in JSON exports.
type ReadingJSON struct {
	MeasurementTime  string  `json:"measurementTime"`
	MeasurementValue float64 `json:"measurementValue"`
	Type             string  `json:"type"`
}

// ToReading converts the JSON record into a Reading.
func (r *ReadingJSON) ToReading() (measurement.Reading, error) {
	ts, err := measurement.ParseTime(r.MeasurementTime)
	if err != nil {
		return measurement.Reading{}, err
	}
	kind, err := measurement.ParseKind(r.Type)
	if err != nil {
		return measurement.Reading{}, err
	}
	return measurement.New(ts, r.MeasurementValue, kind), nil
}

// JSONFile reads a JSON array of readings.
type JSONFile struct {
	path string
}

// NewJSONFile creates a JSON source for path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Name returns the file path.
func (s *JSONFile) Name() string {
	return s.path
}

// Load reads and decodes the whole file.
func (s *JSONFile) Load(ctx context.Context) ([]measurement.Reading, error) {
	if err := checkFile(s.path); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.NewSourceNotFound(s.path, err)
	}
	defer f.Close()

	readings, err := DecodeJSON(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, s.path)
	}

	logging.Component("source").Debug("json source loaded", "path", s.path, "readings", len(readings))
	return readings, nil
}

// DecodeJSON decodes a JSON array of readings from r.
// A null document, a non-array document, a bad timestamp or an unknown kind
// are all reported as errors.ErrMalformedInput.
func DecodeJSON(ctx context.Context, r io.Reader) ([]measurement.Reading, error) {
	var records []ReadingJSON
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode json: %w: %w", errors.ErrMalformedInput, err)
	}
	if records == nil {
		return nil, fmt.Errorf("no readings (empty or null document): %w", errors.ErrMalformedInput)
	}

	readings := make([]measurement.Reading, 0, len(records))
	for i := range records {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		reading, err := records[i].ToReading()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w: %w", i, errors.ErrMalformedInput, err)
		}
		readings = append(readings, reading)
	}

	return readings, nil
}

// EncodeJSON writes readings as a JSON array in the same shape DecodeJSON reads.
// Times are RFC 3339 with zone and nanoseconds so they read back as the same
// instant.
func EncodeJSON(w io.Writer, readings []measurement.Reading) error {
	records := make([]ReadingJSON, len(readings))
	for i, r := range readings {
		records[i] = ReadingJSON{
			MeasurementTime:  r.Time.Format(time.RFC3339Nano),
			MeasurementValue: r.Value,
			Type:             r.Kind.String(),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
