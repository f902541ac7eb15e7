package ratelimiter

import (
	"context"
	"time"
)

// Config sizes every bucket. A zero Capacity disables throttling in guardd.
type Config struct {
	Capacity       int           `env:"GUARD_RATE_BURST" envDefault:"0"`          // Capacity is the burst a fresh client may send.
	RefillRate     int           `env:"GUARD_RATE_REFILL" envDefault:"10"`        // RefillRate is added back every RefillInterval.
	RefillInterval time.Duration `env:"GUARD_RATE_INTERVAL" envDefault:"1s"`      // RefillInterval is the refill period.
	CleanupAfter   time.Duration `env:"GUARD_RATE_CLEANUP_AFTER" envDefault:"1h"` // CleanupAfter drops idle in-memory buckets.
}

// Enabled reports whether c describes a usable limit.
func (c Config) Enabled() bool { return c.Capacity > 0 }

// Result is the bucket state after a request.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Allowed is false once the bucket went below zero.
func (r Result) Allowed() bool { return r.Remaining >= 0 }

// RetryAfter is zero for allowed requests.
func (r Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Store keeps bucket state. ConsumeTokens refills the bucket for the time
// elapsed, subtracts tokens and returns what is left, which is negative when
// the request must be denied. Consuming zero tokens only refills.
type Store interface {
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}
