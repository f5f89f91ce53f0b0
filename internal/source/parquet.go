package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/logging"
	"github.com/xtxerr/sampler/internal/measurement"
)

// readBatchSize is the number of rows decoded per GenericReader.Read call.
const readBatchSize = 4096

// ParquetRow is the columnar layout of a reading.
// Columns are matched by name, so files written by other tools only need
// the three columns with compatible types.
type ParquetRow struct {
	Kind   string  `parquet:"kind,dict"`
	TimeMs int64   `parquet:"time_ms"`
	Value  float64 `parquet:"value"`
}

// RowFromReading converts a reading into its parquet row.
func RowFromReading(r measurement.Reading) ParquetRow {
	return ParquetRow{
		Kind:   r.Kind.String(),
		TimeMs: r.TimeMs(),
		Value:  r.Value,
	}
}

// ToReading converts the row into a Reading in UTC.
func (r *ParquetRow) ToReading() (measurement.Reading, error) {
	kind, err := measurement.ParseKind(r.Kind)
	if err != nil {
		return measurement.Reading{}, err
	}
	return measurement.New(time.UnixMilli(r.TimeMs).UTC(), r.Value, kind), nil
}

// ParquetFile reads readings from a parquet file.
type ParquetFile struct {
	path string
}

// NewParquetFile creates a parquet source for path.
func NewParquetFile(path string) *ParquetFile {
	return &ParquetFile{path: path}
}

// Name returns the file path.
func (s *ParquetFile) Name() string {
	return s.path
}

// Load reads every row group of the file in order.
func (s *ParquetFile) Load(ctx context.Context) ([]measurement.Reading, error) {
	if err := checkFile(s.path); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.NewSourceNotFound(s.path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, errors.NewSourceNotFound(s.path, err)
	}

	file, err := parquet.OpenFile(f, stat.Size(), parquet.ReadBufferSize(1024*1024))
	if err != nil {
		return nil, errors.NewMalformed(s.path, err.Error())
	}

	reader := parquet.NewGenericReader[ParquetRow](file)
	defer reader.Close()

	readings := make([]measurement.Reading, 0, reader.NumRows())
	rows := make([]ParquetRow, readBatchSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := reader.Read(rows)
		for i := 0; i < n; i++ {
			reading, convErr := rows[i].ToReading()
			if convErr != nil {
				return nil, fmt.Errorf("%s: row %d: %w: %w", s.path, len(readings), errors.ErrMalformedInput, convErr)
			}
			readings = append(readings, reading)
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewMalformed(s.path, err.Error())
		}
	}

	logging.Component("source").Debug("parquet source loaded",
		"path", s.path,
		"readings", len(readings),
		"row_groups", len(file.RowGroups()),
	)
	return readings, nil
}
