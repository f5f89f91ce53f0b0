package sink

import (
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/sampling"
	"github.com/xtxerr/sampler/internal/wire"
)

// Protodelim writes one length-delimited google.protobuf.Struct per reading.
type Protodelim struct {
	mu      sync.Mutex
	out     io.WriteCloser
	buf     *bufio.Writer
	w       *wire.Writer
	records int64
	closed  bool
}

// NewProtodelim creates a protodelim sink writing to w.
func NewProtodelim(w io.WriteCloser) *Protodelim {
	buf := bufio.NewWriter(w)
	return &Protodelim{
		out: w,
		buf: buf,
		w:   wire.NewWriter(buf),
	}
}

// Write emits one record per reading and flushes.
func (p *Protodelim) Write(ctx context.Context, result sampling.Result) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errors.ErrWriterClosed
	}

	for i, r := range Ordered(result) {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := p.w.WriteReading(r); err != nil {
			return sinkError("protodelim", err)
		}
		p.records++
	}

	return sinkError("protodelim flush", p.buf.Flush())
}

// Records returns the number of records written.
func (p *Protodelim) Records() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.records
}

// Close flushes pending records and closes the underlying writer.
func (p *Protodelim) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.buf.Flush(); err != nil {
		p.out.Close()
		return sinkError("protodelim flush", err)
	}
	return sinkError("protodelim close", p.out.Close())
}
