package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aliro/scout/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockClient calls fn on each invocation, tracking call count.
type mockClient struct {
	calls int
	fn    func(attempt int) (*model.IdentityResponse, error)
}

func (m *mockClient) SearchByName(_ context.Context, _ string) (*model.IdentityResponse, error) {
	m.calls++
	return m.fn(m.calls)
}

func (m *mockClient) SearchByPointer(_ context.Context, _ string) (*model.IdentityResponse, error) {
	m.calls++
	return m.fn(m.calls)
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := &mockClient{fn: func(_ int) (*model.IdentityResponse, error) {
		return &model.IdentityResponse{Person: &model.Person{SearchPointer: "p"}}, nil
	}}

	rc := NewRetryClient(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := rc.SearchByName(context.Background(), "Jane Doe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Person == nil || got.Person.SearchPointer != "p" {
		t.Fatalf("unexpected response: %+v", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	mock := &mockClient{fn: func(attempt int) (*model.IdentityResponse, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return &model.IdentityResponse{}, nil
	}}

	rc := NewRetryClient(mock, 2, 10*time.Millisecond, discardLogger())
	if _, err := rc.SearchByPointer(context.Background(), "ptr"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_HonorsRetryAfter(t *testing.T) {
	mock := &mockClient{fn: func(attempt int) (*model.IdentityResponse, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 429, RetryAfter: 50 * time.Millisecond}
		}
		return &model.IdentityResponse{}, nil
	}}

	rc := NewRetryClient(mock, 1, time.Millisecond, discardLogger())
	start := time.Now()
	if _, err := rc.SearchByName(context.Background(), "Jane Doe"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("expected Retry-After delay of ~50ms, got %v", elapsed)
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockClient{fn: func(_ int) (*model.IdentityResponse, error) {
		return nil, &model.HTTPError{StatusCode: 403, Err: errors.New("invalid key")}
	}}

	rc := NewRetryClient(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := rc.SearchByName(context.Background(), "Jane Doe")
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 403 {
		t.Fatalf("expected HTTPError with status 403, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &mockClient{fn: func(_ int) (*model.IdentityResponse, error) {
		return nil, errors.New("connection reset")
	}}

	rc := NewRetryClient(mock, 2, 10*time.Millisecond, discardLogger())
	if _, err := rc.SearchByName(context.Background(), "Jane Doe"); err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	// 1 initial + 2 retries = 3
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", mock.calls)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	mock := &mockClient{fn: func(_ int) (*model.IdentityResponse, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc := NewRetryClient(mock, 2, time.Second, discardLogger())
	_, err := rc.SearchByName(ctx, "Jane Doe")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}
