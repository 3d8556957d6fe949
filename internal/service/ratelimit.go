package service

import (
	"fmt"
	"net"
	"time"

	"github.com/yasserelgammal/rate-limiter/limiter"
	"github.com/yasserelgammal/rate-limiter/store"
)

// ErrorTypeRateLimited marks a request dropped because its client exceeded
// the configured rate
const ErrorTypeRateLimited = "rate_limited"

// requestLimiter applies a token bucket per client host. Buckets are keyed by
// host so reconnecting does not refill them.
type requestLimiter struct {
	bucket *limiter.TokenBucket
}

// newRequestLimiter returns nil when rate is zero
func newRequestLimiter(rate, burst int) (*requestLimiter, error) {
	if rate <= 0 {
		return nil, nil
	}
	if burst <= 0 {
		burst = rate
	}

	bucket, err := limiter.NewTokenBucket(
		limiter.Config{
			Rate:     int64(rate),
			Duration: time.Second,
			Burst:    int64(burst),
		},
		store.NewMemoryStore(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}
	return &requestLimiter{bucket: bucket}, nil
}

// Allow reports whether remoteAddr may send another request. A nil limiter
// allows everything.
func (l *requestLimiter) Allow(remoteAddr string) bool {
	if l == nil {
		return true
	}
	return l.bucket.Allow(clientKey(remoteAddr))
}

func clientKey(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func rateLimited(req Request) *Response {
	return &Response{
		ID:        req.ID,
		Error:     "rate limit exceeded, slow down",
		ErrorType: ErrorTypeRateLimited,
	}
}
