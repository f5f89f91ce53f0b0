package source

import (
	"context"
	"os"

	"github.com/xtxerr/sampler/internal/config"
	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/measurement"
)

// Source loads a complete batch of readings.
type Source interface {
	// Load returns all readings of the source in file order.
	Load(ctx context.Context) ([]measurement.Reading, error)

	// Name identifies the source in logs.
	Name() string
}

// Open returns the source for the configured input.
func Open(cfg config.InputConfig) (Source, error) {
	format, err := cfg.ResolvedFormat()
	if err != nil {
		return nil, err
	}

	switch format {
	case config.FormatJSON:
		return NewJSONFile(cfg.Path), nil
	case config.FormatParquet:
		return NewParquetFile(cfg.Path), nil
	case config.FormatCSV:
		return NewCSVFile(cfg.Path), nil
	case config.FormatProtodelim:
		return NewProtodelimFile(cfg.Path), nil
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "input format %q", format)
	}
}

// checkFile maps a missing or unreadable path to ErrSourceNotFound.
func checkFile(path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		return errors.NewSourceNotFound(path, err)
	}
	if stat.IsDir() {
		return errors.NewSourceNotFound(path, errors.New("is a directory"))
	}
	return nil
}
