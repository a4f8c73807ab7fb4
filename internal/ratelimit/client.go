package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/aliro/scout/internal/model"
)

// LimitedClient is a decorator that takes a token from a shared bucket
// before every identity API call.
type LimitedClient struct {
	inner   model.IdentityClient
	limiter *rate.Limiter
}

// NewLimitedClient wraps inner with a requestsPerSecond ceiling. A
// non-positive rate disables limiting; burst defaults to one second's worth.
func NewLimitedClient(inner model.IdentityClient, requestsPerSecond float64, burst int) *LimitedClient {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		if burst <= 0 {
			burst = max(1, int(requestsPerSecond))
		}
	}
	return &LimitedClient{
		inner:   inner,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// SearchByName waits for a token, then delegates.
func (c *LimitedClient) SearchByName(ctx context.Context, name string) (*model.IdentityResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	return c.inner.SearchByName(ctx, name)
}

// SearchByPointer waits for a token, then delegates.
func (c *LimitedClient) SearchByPointer(ctx context.Context, pointer string) (*model.IdentityResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	return c.inner.SearchByPointer(ctx, pointer)
}
