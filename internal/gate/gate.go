// Package gate caps the number of in-flight identity calls.
package gate

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate is a counting semaphore with a blocking, cancellable Acquire. Slots
// are handed to waiters as soon as they are released.
type Gate struct {
	sem      *semaphore.Weighted
	limit    int
	inFlight atomic.Int64
}

// New creates a gate admitting at most limit concurrent holders.
func New(limit int) (*Gate, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("gate limit must be positive, got %d", limit)
	}
	return &Gate{
		sem:   semaphore.NewWeighted(int64(limit)),
		limit: limit,
	}, nil
}

// Acquire blocks until a slot is free or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("gate acquire: %w", err)
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("gate acquire: %w", err)
	}
	g.inFlight.Add(1)
	return nil
}

// Release frees a slot taken by Acquire.
func (g *Gate) Release() {
	g.inFlight.Add(-1)
	g.sem.Release(1)
}

// InFlight returns the number of slots currently held.
func (g *Gate) InFlight() int {
	return int(g.inFlight.Load())
}

// Limit returns the gate's ceiling.
func (g *Gate) Limit() int {
	return g.limit
}
