package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestThrottle_FirstWaitDoesNotBlock(t *testing.T) {
	th := NewThrottle(5 * time.Second)

	start := time.Now()
	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected first wait to be near-instant, got %v", elapsed)
	}
}

func TestThrottle_WaitMeasuredFromDone(t *testing.T) {
	th := NewThrottle(100 * time.Millisecond)
	ctx := context.Background()

	if err := th.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	// Simulate a chunk that takes a while; the gap counts from its completion.
	time.Sleep(60 * time.Millisecond)
	th.Done()

	start := time.Now()
	if err := th.Wait(ctx); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestThrottle_NoWaitAfterIntervalElapsed(t *testing.T) {
	th := NewThrottle(30 * time.Millisecond)
	th.Done()
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Errorf("expected no wait, got %v", elapsed)
	}
}

func TestThrottle_ContextCancellation(t *testing.T) {
	th := NewThrottle(5 * time.Second) // long delay
	th.Done()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	if err := th.Wait(ctx); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}
