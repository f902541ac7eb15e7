// Package ratelimiter throttles callers with a token bucket.
//
// Each key owns a bucket holding at most Capacity tokens. Every
// RefillInterval, RefillRate tokens are added back. A request consumes one
// token and is denied once the bucket is empty. Bucket state lives in a
// Store: MemoryStore for a single process, or the Redis store in package
// redis when several processes share one budget.
//
//	b, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), cfg)
//	r.Use(ratelimiter.Middleware(b, ratelimiter.ByClientIP, ratelimiter.WithDeniedHandler(deny)))
package ratelimiter
