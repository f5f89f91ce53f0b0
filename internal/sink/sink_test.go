package sink

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xtxerr/sampler/internal/config"
	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/measurement"
	"github.com/xtxerr/sampler/internal/sampling"
	"github.com/xtxerr/sampler/internal/source"
	"github.com/xtxerr/sampler/internal/testutil"
)

// sampledResult is the sampled output of the reference device export
// with a 10:00 start and a 5 minute interval.
func sampledResult(t *testing.T) sampling.Result {
	t.Helper()
	return sampling.Result{
		measurement.KindTemp: {
			testutil.Reading(t, "2017-01-03T10:05:00", 35.79, measurement.KindTemp),
			testutil.Reading(t, "2017-01-03T10:10:00", 35.01, measurement.KindTemp),
		},
		measurement.KindSpO2: {
			testutil.Reading(t, "2017-01-03T10:05:00", 97.17, measurement.KindSpO2),
			testutil.Reading(t, "2017-01-03T10:10:00", 95.08, measurement.KindSpO2),
		},
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestOrdered(t *testing.T) {
	got := Ordered(sampledResult(t))
	if len(got) != 4 {
		t.Fatalf("expected 4 readings, got %d", len(got))
	}
	if got[0].Kind != measurement.KindTemp || got[3].Kind != measurement.KindSpO2 {
		t.Errorf("readings should be grouped in Kinds() order: %v", got)
	}
	if len(Ordered(sampling.Result{})) != 0 {
		t.Error("empty result should flatten to nothing")
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(nopCloser{&buf})

	if err := c.Write(context.Background(), sampledResult(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	want := strings.Join([]string{
		"{2017-01-03T10:05:00, TEMP, 35.79}",
		"{2017-01-03T10:10:00, TEMP, 35.01}",
		"{2017-01-03T10:05:00, SpO2, 97.17}",
		"{2017-01-03T10:10:00, SpO2, 95.08}",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
	if c.Lines() != 4 {
		t.Errorf("expected 4 lines, got %d", c.Lines())
	}
}

func TestFormatLineRounding(t *testing.T) {
	r := measurement.New(time.Date(2017, 1, 3, 10, 0, 0, 0, time.UTC), 36.005, measurement.KindTemp)
	tests := []struct {
		value    float64
		expected string
	}{
		{36.005, "36.01"},
		{35.794, "35.79"},
		{98, "98.00"},
		{-1.005, "-1.01"},
		{0, "0.00"},
	}

	for _, tt := range tests {
		r.Value = tt.value
		want := "{2017-01-03T10:00:00, TEMP, " + tt.expected + "}"
		if got := FormatLine(r); got != want {
			t.Errorf("value %v: expected %q, got %q", tt.value, want, got)
		}
	}
}

func TestConsoleWriteFailure(t *testing.T) {
	c := NewConsole(nopCloser{failingWriter{}})

	err := c.Write(context.Background(), sampledResult(t))
	if !errors.Is(err, errors.ErrSinkFailed) {
		t.Fatalf("expected ErrSinkFailed, got %v", err)
	}
	if errors.ExitCode(err) != errors.CodeSinkFailed {
		t.Errorf("expected exit code SinkFailed, got %s", errors.CodeName(errors.ExitCode(err)))
	}
}

func TestWriteAfterClose(t *testing.T) {
	var buf bytes.Buffer
	sinks := map[string]Sink{
		"console":    NewConsole(nopCloser{&buf}),
		"json":       NewJSON(nopCloser{&buf}),
		"protodelim": NewProtodelim(nopCloser{&buf}),
	}

	pq, err := NewParquet(filepath.Join(t.TempDir(), "out.parquet"), DefaultOptions())
	if err != nil {
		t.Fatalf("NewParquet: %v", err)
	}
	sinks["parquet"] = pq

	for name, s := range sinks {
		if err := s.Close(); err != nil {
			t.Errorf("%s: Close: %v", name, err)
		}
		if err := s.Close(); err != nil {
			t.Errorf("%s: second Close: %v", name, err)
		}
		if err := s.Write(context.Background(), sampledResult(t)); !errors.Is(err, errors.ErrWriterClosed) {
			t.Errorf("%s: expected ErrWriterClosed, got %v", name, err)
		}
	}
}

func TestWriteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	for name, s := range map[string]Sink{
		"console":    NewConsole(nopCloser{&buf}),
		"json":       NewJSON(nopCloser{&buf}),
		"protodelim": NewProtodelim(nopCloser{&buf}),
	} {
		if err := s.Write(ctx, sampledResult(t)); !errors.Is(err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", name, err)
		}
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written after cancellation, got %q", buf.String())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "sampled.json")
	s, err := Open(config.OutputConfig{Format: config.FormatJSON, Path: path}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	result := sampledResult(t)
	if err := s.Write(context.Background(), result); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := source.NewJSONFile(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	testutil.AssertReadings(t, got, Ordered(result))
}

func TestParquetRoundTrip(t *testing.T) {
	for _, algo := range []string{"none", "snappy", "zstd", "lz4", "gzip"} {
		t.Run(algo, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sampled.parquet")
			cfg := config.OutputConfig{
				Format:      config.FormatParquet,
				Path:        path,
				Compression: config.CompressionConfig{Algorithm: algo, Level: 9},
			}

			s, err := Open(cfg, nil)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			result := sampledResult(t)
			if err := s.Write(context.Background(), result); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if got := s.(*Parquet).RowCount(); got != 4 {
				t.Errorf("expected 4 rows, got %d", got)
			}
			if err := s.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			got, err := source.NewParquetFile(path).Load(context.Background())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			testutil.AssertReadings(t, got, Ordered(result))
		})
	}
}

func TestProtodelimRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sampled.pb")
	s, err := Open(config.OutputConfig{Format: config.FormatProtodelim, Path: path}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	result := sampledResult(t)
	if err := s.Write(context.Background(), result); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := s.(*Protodelim).Records(); got != 4 {
		t.Errorf("expected 4 records, got %d", got)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := source.NewProtodelimFile(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	testutil.AssertReadings(t, got, Ordered(result))
}

func TestOpen(t *testing.T) {
	var stdout bytes.Buffer

	s, err := Open(config.OutputConfig{Format: config.FormatConsole}, &stdout)
	if err != nil {
		t.Fatalf("Open console: %v", err)
	}
	if err := s.Write(context.Background(), sampledResult(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "{2017-01-03T10:05:00, TEMP, 35.79}") {
		t.Errorf("console should write to stdout, got %q", stdout.String())
	}

	if _, err := Open(config.OutputConfig{Format: config.FormatParquet}, &stdout); !errors.Is(err, errors.ErrMissingField) {
		t.Errorf("parquet without path: expected ErrMissingField, got %v", err)
	}
	if _, err := Open(config.OutputConfig{Format: "xml"}, &stdout); !errors.Is(err, errors.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestOpenUnwritablePath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := Open(config.OutputConfig{Format: config.FormatJSON, Path: filepath.Join(blocker, "out.json")}, nil)
	if !errors.Is(err, errors.ErrSinkFailed) {
		t.Fatalf("expected ErrSinkFailed, got %v", err)
	}
}

func TestParseCompressionType(t *testing.T) {
	tests := map[string]CompressionType{
		"snappy": CompressionSnappy,
		"zstd":   CompressionZstd,
		"lz4":    CompressionLZ4,
		"gzip":   CompressionGzip,
		"none":   CompressionNone,
		"":       CompressionNone,
		"brotli": CompressionZstd,
	}
	for in, want := range tests {
		if got := ParseCompressionType(in); got != want {
			t.Errorf("%q: expected %s, got %s", in, want, got)
		}
	}
}
