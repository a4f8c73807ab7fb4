package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/aliro/scout/internal/model"
)

// RetryClient is a decorator that retries transient identity API failures
// with exponential backoff and jitter.
type RetryClient struct {
	inner      model.IdentityClient
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewRetryClient wraps an IdentityClient with retry logic.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewRetryClient(inner model.IdentityClient, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetryClient {
	return &RetryClient{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// SearchByName looks up a name, retrying on transient errors.
func (c *RetryClient) SearchByName(ctx context.Context, name string) (*model.IdentityResponse, error) {
	return c.do(ctx, func(ctx context.Context) (*model.IdentityResponse, error) {
		return c.inner.SearchByName(ctx, name)
	})
}

// SearchByPointer re-queries a pointer, retrying on transient errors.
func (c *RetryClient) SearchByPointer(ctx context.Context, pointer string) (*model.IdentityResponse, error) {
	return c.do(ctx, func(ctx context.Context) (*model.IdentityResponse, error) {
		return c.inner.SearchByPointer(ctx, pointer)
	})
}

func (c *RetryClient) do(ctx context.Context, call func(context.Context) (*model.IdentityResponse, error)) (*model.IdentityResponse, error) {
	resp, err := call(ctx)
	if err == nil {
		return resp, nil
	}
	if !isRetryable(err) {
		return nil, err
	}

	lastErr := err
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		delay := c.backoffDelay(attempt, lastErr)

		c.logger.Warn("retrying after transient error",
			"attempt", attempt,
			"max_retries", c.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		resp, err = call(ctx)
		if err == nil {
			return resp, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func (c *RetryClient) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := c.baseDelay << (attempt - 1)

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		// 429 and 5xx are transient; other 4xx (bad key, bad query) are not.
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}

	// Network errors and truncated bodies.
	return true
}
