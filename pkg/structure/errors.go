package structure

import (
	"errors"
	"fmt"
)

var (
	ErrSizeExceeded      = errors.New("structure: document exceeds size limit")
	ErrDepthExceeded     = errors.New("structure: document exceeds nesting depth limit")
	ErrInvalidFormat     = errors.New("structure: malformed document")
	ErrUnsupportedFormat = errors.New("structure: unsupported document format")

	// errNestingCeiling marks a parser failure caused by its own nesting cap.
	errNestingCeiling = errors.New("structure: parser nesting ceiling reached")
)

// SizeError is returned before any parsing when the raw document is too large.
type SizeError struct {
	Limit  int64
	Actual int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("document is %d bytes, limit is %d", e.Actual, e.Limit)
}

func (e *SizeError) Is(target error) bool { return target == ErrSizeExceeded }

// DepthError reports the first container found deeper than the limit.
type DepthError struct {
	Limit int
	Depth int
	// Path is a JSON pointer to the offending container. It is empty when
	// the parser gave up before the container could be located; Depth is
	// then a lower bound.
	Path string
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("nesting depth %d at %q exceeds limit %d", e.Depth, e.Path, e.Limit)
}

func (e *DepthError) Is(target error) bool { return target == ErrDepthExceeded }

// SyntaxError wraps a parser failure with the position the parser reported.
// Offset, Line and Column are zero when unknown; Line and Column are 1-based.
type SyntaxError struct {
	Format Format
	Offset int64
	Line   int
	Column int
	Reason string
	Err    error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid %s at line %d, column %d: %s", e.Format, e.Line, e.Column, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Format, e.Reason)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrInvalidFormat }

func (e *SyntaxError) Unwrap() error { return e.Err }
