// Package sink presents or persists sampled readings.
//
// Every sink emits readings kind by kind in measurement.Kinds() order and,
// within a kind, in ascending bucket order as produced by the sampler.
package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xtxerr/sampler/internal/config"
	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/measurement"
	"github.com/xtxerr/sampler/internal/sampling"
)

// Sink receives the result of a sampling run.
type Sink interface {
	// Write emits every reading of the result.
	Write(ctx context.Context, result sampling.Result) error

	// Close flushes and releases the sink. Close is idempotent.
	Close() error
}

// Open returns the sink for the configured output. Text and record formats
// write to stdout when no path is configured.
func Open(cfg config.OutputConfig, stdout io.Writer) (Sink, error) {
	switch cfg.Format {
	case config.FormatParquet:
		if cfg.Path == "" {
			return nil, errors.NewMissingField("output.path")
		}
		opts := Options{
			Compression:      ParseCompressionType(cfg.Compression.Algorithm),
			CompressionLevel: cfg.Compression.Level,
		}
		return NewParquet(cfg.Path, opts)
	case config.FormatConsole, "":
		w, err := openOutput(cfg.Path, stdout)
		if err != nil {
			return nil, err
		}
		return NewConsole(w), nil
	case config.FormatJSON:
		w, err := openOutput(cfg.Path, stdout)
		if err != nil {
			return nil, err
		}
		return NewJSON(w), nil
	case config.FormatProtodelim:
		w, err := openOutput(cfg.Path, stdout)
		if err != nil {
			return nil, err
		}
		return NewProtodelim(w), nil
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "output format %q", cfg.Format)
	}
}

// Ordered flattens a result kind by kind in measurement.Kinds() order.
func Ordered(result sampling.Result) []measurement.Reading {
	out := make([]measurement.Reading, 0, result.Len())
	for _, k := range measurement.Kinds() {
		out = append(out, result[k]...)
	}
	return out
}

// nopCloser keeps the sink from closing a writer it does not own.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// openOutput creates the file at path, or wraps stdout when path is empty.
func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" {
		if stdout == nil {
			stdout = os.Stdout
		}
		return nopCloser{stdout}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(errors.ErrSinkFailed, "create directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSinkFailed, "create file: %v", err)
	}
	return f, nil
}

// sinkError wraps an I/O failure with ErrSinkFailed.
func sinkError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.IsSinkError(err) {
		return errors.Wrap(err, op)
	}
	return fmt.Errorf("%s: %w: %w", op, errors.ErrSinkFailed, err)
}
