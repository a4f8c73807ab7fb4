package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Throttle enforces a minimum gap between the completion of one unit of work
// (a chunk of identity lookups) and the start of the next.
type Throttle struct {
	mu       sync.Mutex
	lastDone time.Time // zero until Done is first called
	interval time.Duration
}

// NewThrottle creates a throttle that spaces work units by interval.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Interval returns the configured gap.
func (t *Throttle) Interval() time.Duration {
	return t.interval
}

// Wait blocks until interval has passed since the last Done. It returns
// immediately before the first Done and returns an error if ctx is cancelled
// while waiting.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	last := t.lastDone
	t.mu.Unlock()

	if last.IsZero() {
		return ctx.Err()
	}

	remaining := t.interval - time.Since(last)
	if remaining <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("throttle wait: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// Done records that the current unit of work has completed.
func (t *Throttle) Done() {
	t.mu.Lock()
	t.lastDone = time.Now()
	t.mu.Unlock()
}
