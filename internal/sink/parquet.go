package sink

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
	"github.com/parquet-go/parquet-go/compress/zstd"
	"github.com/xtxerr/sampler/config"
	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/sampling"
	"github.com/xtxerr/sampler/internal/source"
)

// Options configures the Parquet sink.
type Options struct {
	// Compression algorithm
	Compression CompressionType

	// CompressionLevel for zstd (1-22, 0 selects the codec default)
	CompressionLevel int
}

// CompressionType represents a Parquet compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionZstd
	CompressionLZ4
	CompressionGzip
)

// String returns the configuration name of the algorithm.
func (c CompressionType) String() string {
	switch c {
	case CompressionSnappy:
		return "snappy"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	case CompressionGzip:
		return "gzip"
	default:
		return "none"
	}
}

// DefaultOptions returns default Parquet options.
func DefaultOptions() Options {
	return Options{
		Compression:      ParseCompressionType(config.DefaultCompression),
		CompressionLevel: config.DefaultCompressionLevel,
	}
}

// ParseCompressionType parses a compression type string.
// Unknown names fall back to zstd; config validation rejects them earlier.
func ParseCompressionType(s string) CompressionType {
	switch s {
	case "snappy":
		return CompressionSnappy
	case "zstd":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	case "gzip":
		return CompressionGzip
	case "none", "":
		return CompressionNone
	default:
		return CompressionZstd
	}
}

// getCompression returns the parquet-go compression codec.
func getCompression(ct CompressionType, level int) compress.Codec {
	switch ct {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return zstdCodec(level)
	case CompressionLZ4:
		return &parquet.Lz4Raw
	case CompressionGzip:
		return &parquet.Gzip
	default:
		return &parquet.Uncompressed
	}
}

// zstdCodec maps a zstd command line level onto the encoder speeds.
func zstdCodec(level int) compress.Codec {
	switch {
	case level <= 0:
		return &parquet.Zstd
	case level <= 2:
		return &zstd.Codec{Level: zstd.SpeedFastest}
	case level <= 6:
		return &zstd.Codec{Level: zstd.SpeedDefault}
	case level <= 10:
		return &zstd.Codec{Level: zstd.SpeedBetterCompression}
	default:
		return &zstd.Codec{Level: zstd.SpeedBestCompression}
	}
}

// Parquet writes sampled readings as {kind, time_ms, value} rows.
type Parquet struct {
	mu       sync.Mutex
	path     string
	file     *os.File
	writer   *parquet.GenericWriter[source.ParquetRow]
	rowCount int64
	closed   bool
}

// NewParquet creates the file at path and a writer over it.
func NewParquet(path string, opts Options) (*Parquet, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, sinkError("create directory", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, sinkError("create file", err)
	}

	writerOpts := []parquet.WriterOption{
		parquet.Compression(getCompression(opts.Compression, opts.CompressionLevel)),
		parquet.KeyValueMetadata("writer", "sampler"),
	}

	writer := parquet.NewGenericWriter[source.ParquetRow](f, writerOpts...)

	return &Parquet{
		path:   path,
		file:   f,
		writer: writer,
	}, nil
}

// Write appends the result as rows, kind by kind.
func (p *Parquet) Write(ctx context.Context, result sampling.Result) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errors.ErrWriterClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	readings := Ordered(result)
	if len(readings) == 0 {
		return nil
	}

	rows := make([]source.ParquetRow, len(readings))
	for i, r := range readings {
		rows[i] = source.RowFromReading(r)
	}

	n, err := p.writer.Write(rows)
	if err != nil {
		return sinkError("write rows", err)
	}

	p.rowCount += int64(n)
	return nil
}

// Close writes the footer and closes the file.
func (p *Parquet) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.writer.Close(); err != nil {
		p.file.Close()
		return sinkError("close writer", err)
	}

	return sinkError("close file", p.file.Close())
}

// RowCount returns the number of rows written.
func (p *Parquet) RowCount() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rowCount
}

// Path returns the file path.
func (p *Parquet) Path() string {
	return p.path
}
