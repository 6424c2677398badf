package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

type rateLimitedClient struct {
	next    LLMClient
	limiter *rate.Limiter
}

// WithRateLimit throttles Generate calls to rps with the given burst. A
// request whose context cannot wait long enough fails with ErrRateLimited.
// rps <= 0 returns next unchanged.
func WithRateLimit(next LLMClient, rps float64, burst int) LLMClient {
	if rps <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedClient{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (c *rateLimitedClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return c.next.Generate(ctx, req)
}

func (c *rateLimitedClient) Available(ctx context.Context) bool {
	return c.next.Available(ctx)
}
