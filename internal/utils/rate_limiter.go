// internal/utils/rate_limiter.go
package utils

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter wraps the golang.org/x/time/rate limiter. A nil or disabled
// limiter never blocks.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing eventsPerSecond with the given burst.
// A non-positive rate returns a disabled limiter.
func NewRateLimiter(eventsPerSecond float64, burst int) *RateLimiter {
	if eventsPerSecond <= 0 {
		return &RateLimiter{}
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(eventsPerSecond), burst),
	}
}

// Enabled reports whether the limiter actually limits anything
func (rl *RateLimiter) Enabled() bool {
	return rl != nil && rl.limiter != nil
}

// Wait blocks until the limiter allows the next event or ctx is done
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if !rl.Enabled() {
		return ctx.Err()
	}
	return rl.limiter.Wait(ctx)
}

// Allow reports whether an event may happen now
func (rl *RateLimiter) Allow() bool {
	if !rl.Enabled() {
		return true
	}
	return rl.limiter.Allow()
}
