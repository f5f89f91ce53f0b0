package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/logging"
	"github.com/xtxerr/sampler/internal/measurement"
)

// csvQuery reads every column as text so timestamps and kinds go through
// the same parsing as the JSON source. File order is kept by DuckDB's
// insertion order preservation.
const csvQuery = `
	SELECT time, TRY_CAST(value AS DOUBLE), kind
	FROM read_csv($1, header = true, all_varchar = true)
`

// CSVFile reads readings from a CSV file with a time,value,kind header.
type CSVFile struct {
	path string
}

// NewCSVFile creates a CSV source for path.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

// Name returns the file path.
func (s *CSVFile) Name() string {
	return s.path
}

// Load queries the file through an in-memory DuckDB database.
func (s *CSVFile) Load(ctx context.Context) ([]measurement.Reading, error) {
	if err := checkFile(s.path); err != nil {
		return nil, err
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, csvQuery, s.path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.NewMalformed(s.path, err.Error())
	}
	defer rows.Close()

	var readings []measurement.Reading
	for rows.Next() {
		var (
			ts, kind sql.NullString
			value    sql.NullFloat64
		)
		if err := rows.Scan(&ts, &value, &kind); err != nil {
			return nil, errors.NewMalformed(s.path, err.Error())
		}

		line := len(readings) + 2
		if !ts.Valid || !value.Valid || !kind.Valid {
			return nil, errors.NewMalformed(s.path, fmt.Sprintf("line %d: empty or non-numeric field", line))
		}

		reading, err := parseCSVRecord(ts.String, value.Float64, kind.String)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w: %w", s.path, line, errors.ErrMalformedInput, err)
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.NewMalformed(s.path, err.Error())
	}

	if readings == nil {
		readings = []measurement.Reading{}
	}

	logging.Component("source").Debug("csv source loaded", "path", s.path, "readings", len(readings))
	return readings, nil
}

func parseCSVRecord(ts string, value float64, kind string) (measurement.Reading, error) {
	t, err := measurement.ParseTime(ts)
	if err != nil {
		return measurement.Reading{}, err
	}
	k, err := measurement.ParseKind(kind)
	if err != nil {
		return measurement.Reading{}, err
	}
	return measurement.New(t, value, k), nil
}
