package openagenda

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"

	// DefaultRetryAfter is used when a 429 carries no Retry-After.
	DefaultRetryAfter = 5 * time.Second

	// MaxRetryAfter caps how long a single throttle may block.
	MaxRetryAfter = time.Minute
)

// RateLimiter paces requests with a token bucket.
type RateLimiter struct {
	bucket *rate.Limiter
}

// NewRateLimiter allows rps requests per second with a burst of one.
func NewRateLimiter(rps float64) *RateLimiter {
	return &RateLimiter{bucket: rate.NewLimiter(rate.Limit(rps), 1)}
}

// Wait blocks until the next request may be sent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.bucket.Wait(ctx)
}

// CheckRateLimit returns a RateLimitError for 429 responses.
func (r *RateLimiter) CheckRateLimit(resp *http.Response) error {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}
	return &RateLimitError{RetryAfter: retryAfter(resp.Header.Get(HeaderRetryAfter))}
}

func retryAfter(v string) time.Duration {
	d := DefaultRetryAfter
	if v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
			d = time.Duration(seconds) * time.Second
		}
	}
	if d > MaxRetryAfter {
		d = MaxRetryAfter
	}
	return d
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
