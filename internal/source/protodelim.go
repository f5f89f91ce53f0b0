package source

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/logging"
	"github.com/xtxerr/sampler/internal/measurement"
	"github.com/xtxerr/sampler/internal/wire"
)

// ProtodelimFile reads length-delimited protobuf records as written by the
// protodelim sink.
type ProtodelimFile struct {
	path string
}

// NewProtodelimFile creates a protodelim source for path.
func NewProtodelimFile(path string) *ProtodelimFile {
	return &ProtodelimFile{path: path}
}

// Name returns the file path.
func (s *ProtodelimFile) Name() string {
	return s.path
}

// Load reads records until the end of the file.
func (s *ProtodelimFile) Load(ctx context.Context) ([]measurement.Reading, error) {
	if err := checkFile(s.path); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.NewSourceNotFound(s.path, err)
	}
	defer f.Close()

	r := wire.NewReader(f)
	readings := []measurement.Reading{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		reading, err := r.ReadReading()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, errors.ErrMalformedInput) {
				return nil, fmt.Errorf("%s: record %d: %w", s.path, len(readings), err)
			}
			return nil, fmt.Errorf("%s: record %d: %w: %w", s.path, len(readings), errors.ErrMalformedInput, err)
		}
		readings = append(readings, reading)
	}

	logging.Component("source").Debug("protodelim source loaded", "path", s.path, "readings", len(readings))
	return readings, nil
}
