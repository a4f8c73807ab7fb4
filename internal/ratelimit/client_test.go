package ratelimit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aliro/scout/internal/model"
)

// recordingClient counts calls and returns an empty response.
type recordingClient struct {
	byName    atomic.Int32
	byPointer atomic.Int32
}

func (c *recordingClient) SearchByName(_ context.Context, _ string) (*model.IdentityResponse, error) {
	c.byName.Add(1)
	return &model.IdentityResponse{}, nil
}

func (c *recordingClient) SearchByPointer(_ context.Context, _ string) (*model.IdentityResponse, error) {
	c.byPointer.Add(1)
	return &model.IdentityResponse{}, nil
}

func TestLimitedClient_EnforcesRate(t *testing.T) {
	inner := &recordingClient{}
	// 20 req/s with burst 1: five calls need at least ~200ms.
	c := NewLimitedClient(inner, 20, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		if _, err := c.SearchByName(ctx, "Jane Doe"); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	if got := inner.byName.Load(); got != 5 {
		t.Errorf("inner calls = %d, want 5", got)
	}
	if elapsed < 150*time.Millisecond {
		t.Errorf("expected >= 150ms for 5 calls at 20/s, got %v", elapsed)
	}
}

func TestLimitedClient_DisabledWhenRateZero(t *testing.T) {
	inner := &recordingClient{}
	c := NewLimitedClient(inner, 0, 0)

	start := time.Now()
	for i := 0; i < 50; i++ {
		if _, err := c.SearchByPointer(context.Background(), "ptr"); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected unlimited calls to be near-instant, got %v", elapsed)
	}
	if got := inner.byPointer.Load(); got != 50 {
		t.Errorf("inner calls = %d, want 50", got)
	}
}

func TestLimitedClient_ContextCancellation(t *testing.T) {
	inner := &recordingClient{}
	c := NewLimitedClient(inner, 1, 1)

	// Drain the single token.
	if _, err := c.SearchByName(context.Background(), "Jane Doe"); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.SearchByName(ctx, "John Smith"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
	if got := inner.byName.Load(); got != 1 {
		t.Errorf("inner calls = %d, want 1", got)
	}
}
