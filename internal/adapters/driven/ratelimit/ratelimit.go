// Package ratelimit throttles outbound API calls with a token bucket and
// honours server-requested backoff after 429 responses.
package ratelimit

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Service identifies a remote API for rate limiting purposes.
type Service string

const (
	// ServiceAirtable is the Airtable REST API (5 requests/second per base).
	ServiceAirtable Service = "airtable"
	// ServicePineconeControl is the Pinecone index management API.
	ServicePineconeControl Service = "pinecone-control"
	// ServicePineconeData is a Pinecone index data plane.
	ServicePineconeData Service = "pinecone-data"
)

// Config holds rate limiting configuration for a service.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
	// DefaultBackoff applies after a 429 without a Retry-After hint.
	DefaultBackoff time.Duration
}

// Defaults holds the limits for each service.
var Defaults = map[Service]Config{
	ServiceAirtable:        {RequestsPerSecond: 5, BurstSize: 5, DefaultBackoff: 30 * time.Second},
	ServicePineconeControl: {RequestsPerSecond: 2, BurstSize: 5, DefaultBackoff: 10 * time.Second},
	ServicePineconeData:    {RequestsPerSecond: 20, BurstSize: 20, DefaultBackoff: 5 * time.Second},
}

// Limiter provides rate limiting for one API.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	backoff time.Duration
	service Service
}

// New creates a limiter with the defaults for service.
func New(service Service) *Limiter {
	cfg, ok := Defaults[service]
	if !ok {
		cfg = Config{RequestsPerSecond: 5, BurstSize: 5, DefaultBackoff: 30 * time.Second}
	}
	l := NewWithConfig(cfg)
	l.service = service
	return l
}

// NewWithConfig creates a limiter with custom configuration.
func NewWithConfig(cfg Config) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		backoff: cfg.DefaultBackoff,
	}
}

// Unlimited returns a limiter that never waits. Useful in tests.
func Unlimited() *Limiter {
	return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
}

// Service returns the service this limiter was created for.
func (l *Limiter) Service() Service {
	return l.service
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by Backoff.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// Backoff pauses every caller until retryAfter has elapsed.
// Zero or negative uses the configured default.
func (l *Limiter) Backoff(retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if retryAfter <= 0 {
		retryAfter = l.backoff
	}
	l.retryAt = time.Now().Add(retryAfter)
}

// Allow reports whether a request can be made immediately.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return l.limiter.Allow()
}

// RetryAfter parses a Retry-After header given in seconds.
func RetryAfter(header string) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || n < 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
