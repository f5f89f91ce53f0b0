// Package wire provides protobuf record framing for sampled readings.
//
// Records are google.protobuf.Struct messages length-delimited with
// protobuf's standard varint prefix, so any protobuf runtime can stream
// them without a generated schema.
package wire

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/xtxerr/sampler/config"
	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/measurement"
	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/types/known/structpb"
)

// Record field names.
const (
	FieldTime  = "time"
	FieldKind  = "kind"
	FieldValue = "value"
)

// Reader reads length-delimited records from an io.Reader.
// It is safe for concurrent use.
type Reader struct {
	r  *bufio.Reader
	mu sync.Mutex
}

// NewReader creates a Reader wrapping the given io.Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read reads and unmarshals the next record.
// It returns io.EOF when the stream ends cleanly and an error if the record
// exceeds config.DefaultMaxMessageSize.
func (r *Reader) Read() (*structpb.Struct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := &structpb.Struct{}
	opts := protodelim.UnmarshalOptions{
		MaxSize: config.DefaultMaxMessageSize,
	}
	if err := opts.UnmarshalFrom(r.r, rec); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read record: %w", err)
	}
	return rec, nil
}

// ReadReading reads the next record and converts it into a Reading.
func (r *Reader) ReadReading() (measurement.Reading, error) {
	rec, err := r.Read()
	if err != nil {
		return measurement.Reading{}, err
	}
	return StructToReading(rec)
}

// Writer writes length-delimited records to an io.Writer.
// It is safe for concurrent use.
type Writer struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriter creates a Writer wrapping the given io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write marshals and writes a record with length prefix.
func (w *Writer) Write(rec *structpb.Struct) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := protodelim.MarshalTo(w.w, rec); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// WriteReading converts a reading into a record and writes it.
func (w *Writer) WriteReading(r measurement.Reading) error {
	return w.Write(ReadingToStruct(r))
}

// =============================================================================
// Record Conversion
// =============================================================================

// ReadingToStruct converts a reading into a record.
// The time is written as RFC 3339 with nanoseconds to keep the zone.
func ReadingToStruct(r measurement.Reading) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldTime:  structpb.NewStringValue(r.Time.Format(time.RFC3339Nano)),
			FieldKind:  structpb.NewStringValue(r.Kind.String()),
			FieldValue: structpb.NewNumberValue(r.Value),
		},
	}
}

// StructToReading converts a record into a Reading.
// Missing or mistyped fields are reported as errors.ErrMalformedInput.
func StructToReading(rec *structpb.Struct) (measurement.Reading, error) {
	fields := rec.GetFields()

	ts, ok := fields[FieldTime].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return measurement.Reading{}, fmt.Errorf("field %q: %w", FieldTime, errors.ErrMalformedInput)
	}
	kind, ok := fields[FieldKind].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return measurement.Reading{}, fmt.Errorf("field %q: %w", FieldKind, errors.ErrMalformedInput)
	}
	value, ok := fields[FieldValue].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return measurement.Reading{}, fmt.Errorf("field %q: %w", FieldValue, errors.ErrMalformedInput)
	}

	t, err := measurement.ParseTime(ts.StringValue)
	if err != nil {
		return measurement.Reading{}, fmt.Errorf("field %q: %w: %w", FieldTime, errors.ErrMalformedInput, err)
	}
	k, err := measurement.ParseKind(kind.StringValue)
	if err != nil {
		return measurement.Reading{}, fmt.Errorf("field %q: %w: %w", FieldKind, errors.ErrMalformedInput, err)
	}

	return measurement.New(t, value.NumberValue, k), nil
}
