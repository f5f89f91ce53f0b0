package sink

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/xtxerr/sampler/internal/errors"
	"github.com/xtxerr/sampler/internal/measurement"
	"github.com/xtxerr/sampler/internal/sampling"
)

// Console prints one line per reading:
//
//	{2017-01-03T10:05:00, TEMP, 35.79}
type Console struct {
	mu     sync.Mutex
	out    io.WriteCloser
	w      *bufio.Writer
	lines  int64
	closed bool
}

// NewConsole creates a console sink writing to w.
func NewConsole(w io.WriteCloser) *Console {
	return &Console{
		out: w,
		w:   bufio.NewWriter(w),
	}
}

// FormatLine renders a reading the way Console prints it.
// Values are rounded half away from zero on their shortest decimal form,
// so 36.005 prints as 36.01.
func FormatLine(r measurement.Reading) string {
	value := decimal.NewFromFloat(r.Value).StringFixed(2)
	return fmt.Sprintf("{%s, %s, %s}", measurement.FormatTime(r.Time), r.Kind, value)
}

// Write prints the result and flushes.
func (c *Console) Write(ctx context.Context, result sampling.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ErrWriterClosed
	}

	for _, k := range measurement.Kinds() {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, r := range result[k] {
			if _, err := fmt.Fprintln(c.w, FormatLine(r)); err != nil {
				return sinkError("console", err)
			}
			c.lines++
		}
	}

	return sinkError("console flush", c.w.Flush())
}

// Lines returns the number of lines printed.
func (c *Console) Lines() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines
}

// Close flushes pending output and closes the underlying writer.
func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if err := c.w.Flush(); err != nil {
		c.out.Close()
		return sinkError("console flush", err)
	}
	return sinkError("console close", c.out.Close())
}
