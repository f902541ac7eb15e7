package pattern

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidPattern   = errors.New("pattern: invalid pattern")
	ErrTimeoutExceeded  = errors.New("pattern: evaluation timeout exceeded")
	ErrUnknownFlag      = errors.New("pattern: unknown flag")
	ErrUnknownOperation = errors.New("pattern: unknown operation")
)

// SyntaxError reports a pattern or replacement template that failed to compile.
type SyntaxError struct {
	Pattern string
	// Reason is the engine diagnostic without the echoed pattern.
	Reason string
	// Offset is the character offset of the problem, or -1 when the engine
	// does not report one.
	Offset int
	Err    error
}

func (e *SyntaxError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("invalid pattern at offset %d: %s", e.Offset, e.Reason)
	}
	return "invalid pattern: " + e.Reason
}

func (e *SyntaxError) Is(target error) bool { return target == ErrInvalidPattern }

func (e *SyntaxError) Unwrap() error { return e.Err }

// TimeoutError reports an evaluation that did not finish before its deadline.
type TimeoutError struct {
	Timeout time.Duration
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("pattern evaluation exceeded %s", e.Timeout)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeoutExceeded }
