package structure

import (
	"errors"
	"fmt"
	"strings"
)

// Format names a structured document syntax.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// Unlimited disables a size or depth bound.
const Unlimited = -1

// ParseFormat accepts "json", "yaml" and "yml"; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Parser turns raw bytes into a generic value tree made of map[string]any,
// []any and scalars. Errors should be *SyntaxError when a position is known.
type Parser func(raw []byte) (any, error)

// Limiter validates size and depth of structured documents.
// A Limiter is immutable after New and safe for concurrent use.
type Limiter struct {
	parsers map[Format]Parser
	scans   map[Format]scanFunc
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithParser replaces the parser used for format.
func WithParser(format Format, p Parser) Option {
	return func(l *Limiter) {
		if p != nil {
			l.parsers[format] = p
		}
	}
}

// New returns a Limiter with JSON and YAML parsers installed.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		parsers: map[Format]Parser{
			JSON: parseJSON,
			YAML: parseYAML,
		},
		scans: map[Format]scanFunc{
			JSON: scanJSONDepth,
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var defaultLimiter = New()

// Check validates a JSON document: size first, then parse, then depth.
func Check(raw []byte, maxSize int64, maxDepth int) (any, error) {
	return defaultLimiter.Check(raw, JSON, maxSize, maxDepth)
}

// CheckFormat is Check for any built-in format.
func CheckFormat(raw []byte, format Format, maxSize int64, maxDepth int) (any, error) {
	return defaultLimiter.Check(raw, format, maxSize, maxDepth)
}

// Check rejects raw with *SizeError before the parser ever sees it when it is
// larger than maxSize, parses it, and walks the result rejecting with
// *DepthError at the first container nested deeper than maxDepth.
// The root container is depth 0. Negative limits disable the bound.
//
// JSON is token-scanned for depth before it is decoded, so the decoder
// never descends past maxDepth+1 levels. A document that trips the
// parser's own nesting ceiling is reported as *DepthError whenever that
// ceiling lies beyond maxDepth.
func (l *Limiter) Check(raw []byte, format Format, maxSize int64, maxDepth int) (any, error) {
	if maxSize >= 0 && int64(len(raw)) > maxSize {
		return nil, &SizeError{Limit: maxSize, Actual: int64(len(raw))}
	}

	parse, ok := l.parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if scan, ok := l.scans[format]; ok && maxDepth >= 0 {
		if de := scan(raw, maxDepth); de != nil {
			return nil, de
		}
	}

	value, err := parse(raw)
	if err != nil {
		if maxDepth >= 0 && maxDepth < parserNestingCeiling-1 && errors.Is(err, errNestingCeiling) {
			return nil, &DepthError{Limit: maxDepth, Depth: parserNestingCeiling - 1}
		}
		return nil, err
	}

	if maxDepth >= 0 {
		if err := checkDepth(value, maxDepth); err != nil {
			return nil, err
		}
	}
	return value, nil
}

// Depth returns the nesting depth of an already parsed value, using the same
// counting rule as Check. Scalars have depth -1.
func Depth(v any) int {
	deepest := -1
	walk(v, func(depth int, _ *frame) bool {
		if depth > deepest {
			deepest = depth
		}
		return true
	})
	return deepest
}
