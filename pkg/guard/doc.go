// Package guard is the single entry point between untrusted input and the
// code that processes it.
//
// A Request names its Kind and carries the raw payload. Evaluate picks the
// checks for that kind and runs them cheapest first: size, then extension and
// file name, then nesting depth, then the deadline-bounded work. The outcome
// is a Result that is either accepted with an output or rejected with a
// Rejection describing which limit was hit.
//
//	g := guard.New(
//	    guard.WithLogger(log),
//	    guard.WithCache(cache.NewMemoryStore(1024)),
//	    guard.WithLimits(guard.LimitsFromConfig(cfg)),
//	)
//
//	res := g.Evaluate(ctx, guard.Request{
//	    Kind:    guard.StructuredParse,
//	    Payload: body,
//	    Format:  "yaml",
//	})
//	if errors.Is(res.Err(), guard.ErrDepthExceeded) {
//	    // res.Rejection.Depth, res.Rejection.Path
//	}
//
// # Kinds
//
//   - PatternTest: size of the text, then pattern.Run under Limits.Timeout.
//   - StructuredParse: structure.Limiter (size, parse, depth).
//   - MarkupRender: size, optional Markdown rendering, then sanitizer.Sanitize
//     with Limits.Policy.
//   - FileIngest: upload.Validate (size, extension, name), then an optional
//     UTF-8 check.
//
// # Errors
//
// Rejections map onto the sentinels ErrSizeExceeded, ErrDepthExceeded,
// ErrTimeoutExceeded, ErrInvalidFormat, ErrInvalidPattern,
// ErrDisallowedExtension and ErrInvalidFilename. Caller mistakes such as an
// unknown flag are ErrInvalidRequest. Anything else is logged and reported as
// ErrInternal with a generic message.
//
// # Memoization
//
// With WithCache, results of PatternTest, StructuredParse and MarkupRender are
// stored under a BLAKE2b key of every request field and limit. Timeouts and
// internal failures are never stored. Store errors are logged and treated as
// misses.
package guard
