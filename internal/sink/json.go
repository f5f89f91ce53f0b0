package sink

import (
	"context"
	"io"
	"sync"

	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/sampling"
	"github.com/xtxerr/sampler/internal/source"
)

// JSON writes the result as one JSON array in the shape the JSON source
// reads, so output can be sampled again.
type JSON struct {
	mu     sync.Mutex
	w      io.WriteCloser
	closed bool
}

// NewJSON creates a JSON sink writing to w.
func NewJSON(w io.WriteCloser) *JSON {
	return &JSON{w: w}
}

// Write encodes the result as a single array.
func (j *JSON) Write(ctx context.Context, result sampling.Result) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return errors.ErrWriterClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return sinkError("json", source.EncodeJSON(j.w, Ordered(result)))
}

// Close closes the underlying writer.
func (j *JSON) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true
	return sinkError("json close", j.w.Close())
}
