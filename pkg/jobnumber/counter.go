// Package jobnumber hands out strictly increasing, never reused job numbers.
package jobnumber

import (
	"context"
	"errors"
	"sync/atomic"
)

var ErrExhausted = errors.New("job number counter returned a non-positive value")

// Counter allocates the next job number. Implementations must be safe for
// concurrent use and must never return the same value twice.
type Counter interface {
	Next(ctx context.Context) (int64, error)
}

// MemoryCounter is a process-local counter for tests and the memory store.
type MemoryCounter struct {
	last atomic.Int64
}

// NewMemoryCounter returns a counter whose first value is start.
func NewMemoryCounter(start int64) *MemoryCounter {
	c := &MemoryCounter{}
	c.last.Store(start - 1)
	return c
}

func (c *MemoryCounter) Next(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.last.Add(1), nil
}
