package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// AnonymousRateLimit is GitHub's unauthenticated quota per hour.
	AnonymousRateLimit = 60

	// ProactiveRate is the proactive throttle rate (~1.2 req/sec = 4320/hr).
	ProactiveRate = 1.2

	// HeaderRateLimit is the rate limit header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"
)

// RateLimiter paces requests and tracks the quota GitHub reports.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int
	limit     int
	resetTime time.Time
	bucket    *rate.Limiter
}

// NewRateLimiter creates a limiter at ProactiveRate. The quota starts at
// the anonymous limit until a response reports the real one.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithRate(rate.Limit(ProactiveRate), 1)
}

// NewRateLimiterWithRate creates a limiter with a custom pace.
func NewRateLimiterWithRate(r rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		remaining: AnonymousRateLimit,
		limit:     AnonymousRateLimit,
		bucket:    rate.NewLimiter(r, burst),
	}
}

// Wait blocks for the token bucket, then fails with a RateLimitError when
// the reported quota is down to its reserve and has not reset yet.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.remaining <= r.reserve() && time.Now().Before(r.resetTime) {
		return &RateLimitError{
			ResetAt:   r.resetTime,
			Remaining: r.remaining,
			Limit:     r.limit,
		}
	}
	return nil
}

// reserve is the share of the quota left untouched: 100 of 5000, 1 of 60.
// Caller holds mu.
func (r *RateLimiter) reserve() int {
	return r.limit / 50
}

// UpdateFromResponse updates rate limit state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			r.remaining = val
		}
	}
	if limit := resp.Header.Get(HeaderRateLimit); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			r.limit = val
		}
	}
	if reset := resp.Header.Get(HeaderRateReset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			r.resetTime = time.Unix(val, 0)
		}
	}
}

// Remaining returns the current remaining requests.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Limit returns the rate limit.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}
