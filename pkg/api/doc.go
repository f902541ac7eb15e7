// Package api serves guarded operations as a JSON HTTP API.
//
// Every response is {"data": ...} on success or {"error": {...}} on
// rejection, where the error object is a guard.Rejection:
//
//	{"error": {"reason": "depth_exceeded", "message": "...", "limit": 50, "depth": 51, "path": "/a/b"}}
//
// Rejections map to statuses by reason: size_exceeded 413,
// disallowed_extension 415, invalid_request 400, rate_limited 429,
// internal_error 500 and every other reason 422.
//
// Request bodies are capped before they are read, so an oversized payload is
// refused from its Content-Length alone.
//
// WithRateLimiter throttles the /v1 routes per client address, as resolved
// by package clientip under WithClientIP.
//
//	svc := api.New(g, api.WithLogger(log), api.WithReadinessChecks(redis.Healthcheck(client)))
//	srv.Run(ctx, svc.Handle())
package api
