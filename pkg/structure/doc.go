// Package structure bounds the size and nesting depth of JSON and YAML
// documents.
//
// Checks run cheapest first: the byte length is compared against the limit
// before the parser is invoked. JSON is then token-scanned for depth, so the
// decoder never recurses past the limit, and the depth walk runs on the
// parsed value. The scan and the walk keep their own stacks, so a hostile
// document cannot exhaust the goroutine stack of the caller. A document
// nested beyond what the parser itself accepts is still reported as too
// deep, never as malformed.
//
// Depth counts containers: the root object or array is depth 0 and every
// nested object or array adds one. Scalars do not count.
//
//	value, err := structure.Check(body, 1<<20, 32)
//	switch {
//	case errors.Is(err, structure.ErrSizeExceeded):
//	case errors.Is(err, structure.ErrDepthExceeded):
//	case errors.Is(err, structure.ErrInvalidFormat):
//	}
//
// Use New with WithParser to plug in another decoder for a format.
package structure
