// Package ratelimit wraps golang.org/x/time/rate with an optional limiter.
// A non-positive rate disables limiting entirely, which keeps call sites
// free of nil checks and conditionals.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limiter throttles outbound API calls to a configured requests-per-second
// rate using a token bucket. A disabled Limiter passes everything through.
type Limiter struct {
	limiter *rate.Limiter
	rps     float64
}

// New creates a Limiter for the given requests-per-second rate.
// A rate of zero or less returns a disabled (pass-through) Limiter.
// The bucket size is 1 so requests are spaced evenly rather than bursted.
func New(rps float64) *Limiter {
	if rps <= 0 {
		return &Limiter{}
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		rps:     rps,
	}
}

// Enabled reports whether rate limiting is active.
func (l *Limiter) Enabled() bool {
	return l.limiter != nil
}

// RPS returns the configured requests-per-second rate, or 0 when disabled.
func (l *Limiter) RPS() float64 {
	return l.rps
}

// Wait blocks until the next request is permitted or the context is done.
// Returns immediately when the limiter is disabled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed right now without waiting.
// Always true when the limiter is disabled.
func (l *Limiter) Allow() bool {
	if l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}

// Reserve reserves a token and returns the reservation so the caller can
// inspect the required delay. Returns nil when the limiter is disabled.
func (l *Limiter) Reserve() *rate.Reservation {
	if l.limiter == nil {
		return nil
	}
	return l.limiter.Reserve()
}

// String describes the limiter configuration for diagnostics.
func (l *Limiter) String() string {
	if l.limiter == nil {
		return "rate limiting disabled"
	}
	if l.rps < 1 {
		return fmt.Sprintf("1 request per %.1f seconds", 1/l.rps)
	}
	return fmt.Sprintf("%.2f rps", l.rps)
}
