// Package ratelimit provides sliding-window request limiting keyed by an
// arbitrary identifier (client IP, API key, email).
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimitExceeded is returned when the rate limit is exceeded.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed    bool          // Whether the request is allowed
	Remaining  int           // Remaining requests in the current window
	ResetAfter time.Duration // Time until the oldest request leaves the window
	RetryAfter time.Duration // Suggested retry time (if blocked)
	Limit      int           // The configured limit
}

// Limiter defines the rate limiting interface.
type Limiter interface {
	// Allow records a request for identifier and reports whether it fits
	// in the window.
	Allow(ctx context.Context, identifier string) (*Result, error)

	// Reset clears the rate limit state for an identifier.
	Reset(ctx context.Context, identifier string) error

	// Close releases any resources held by the limiter.
	Close() error
}

// Config holds rate limiter configuration.
type Config struct {
	Requests int           // Maximum requests per window
	Window   time.Duration // Time window size
}

// DefaultConfig returns the general API limit.
func DefaultConfig() Config {
	return Config{
		Requests: 100,
		Window:   time.Minute,
	}
}

// SignInConfig returns the stricter limit applied to sign-in attempts.
func SignInConfig() Config {
	return Config{
		Requests: 5,
		Window:   time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Requests <= 0 {
		c.Requests = d.Requests
	}
	if c.Window <= 0 {
		c.Window = d.Window
	}
	return c
}

// denied builds the result for a request that did not fit. oldest is the
// timestamp of the earliest request still in the window.
func denied(cfg Config, now, oldest time.Time) *Result {
	wait := oldest.Add(cfg.Window).Sub(now)
	if wait < 0 {
		wait = 0
	}
	return &Result{
		Allowed:    false,
		Remaining:  0,
		ResetAfter: wait,
		RetryAfter: wait,
		Limit:      cfg.Requests,
	}
}
