package zotero

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter paces source API requests. It combines a fixed inter-request
// spacing (token bucket with burst 1) with a backoff window honouring the
// server's Backoff and Retry-After headers.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a limiter enforcing at most one request per
// interval. Non-positive intervals disable the spacing but keep the
// backoff behaviour.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	lim := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		lim = rate.NewLimiter(rate.Every(interval), 1)
	}
	return &RateLimiter{limiter: lim}
}

// Wait blocks until a request may be made: first any server-advised backoff,
// then the fixed spacing.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if until := time.Until(retryAt); until > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(until):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordBackoff sets a backoff window after the server asked us to slow
// down. Zero or negative seconds fall back to a 60 second default.
func (r *RateLimiter) RecordBackoff(seconds int) {
	if seconds <= 0 {
		seconds = 60
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = time.Now().Add(time.Duration(seconds) * time.Second)
}
