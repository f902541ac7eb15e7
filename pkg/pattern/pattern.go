package pattern

import (
	"context"
	"errors"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/dmitrymomot/inputguard/pkg/async"
)

const (
	// DefaultTimeout bounds an evaluation when the caller passes none.
	DefaultTimeout = 5 * time.Second

	// abandonGrace is added to the engine's own match timeout so that a worker
	// abandoned at the caller's deadline stops shortly afterwards.
	abandonGrace = 250 * time.Millisecond
)

// Spec describes one evaluation.
type Spec struct {
	Pattern     string
	Flags       Flags
	Operation   Operation
	Replacement string
	Text        string
	Timeout     time.Duration
	// MaxMatches caps the collected matches; 0 means no cap.
	MaxMatches int
}

// Group is one capture group of a match. Offsets are in characters (runes).
type Group struct {
	Name    string `json:"name"`
	Text    string `json:"text"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Matched bool   `json:"matched"`
}

// Match is a single match. Start and End are character (rune) offsets into
// the original input; End is exclusive.
type Match struct {
	Text   string  `json:"text"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Groups []Group `json:"groups,omitempty"`
}

// Outcome is the result of a completed evaluation.
type Outcome struct {
	Operation Operation `json:"operation"`
	Matches   []Match   `json:"matches"`
	Parts     []string  `json:"parts,omitempty"`
	Replaced  string    `json:"replaced,omitempty"`
	// Truncated is set when MaxMatches stopped collection early.
	Truncated bool `json:"truncated,omitempty"`
}

// Evaluate collects all non-overlapping matches of pattern in text within timeout.
func Evaluate(ctx context.Context, pattern string, flags Flags, text string, timeout time.Duration) (Outcome, error) {
	return Run(ctx, Spec{
		Pattern:   pattern,
		Flags:     flags,
		Operation: OpFindAll,
		Text:      text,
		Timeout:   timeout,
	})
}

// Run compiles spec in the caller's goroutine, executes it on a detached
// worker and waits at most spec.Timeout for it. On deadline it returns a *TimeoutError right away and
// the worker's eventual result is discarded.
func Run(ctx context.Context, spec Spec) (Outcome, error) {
	if spec.Pattern == "" {
		return Outcome{}, &SyntaxError{Reason: "empty pattern", Offset: 0, Err: ErrInvalidPattern}
	}
	if !spec.Flags.Valid() {
		return Outcome{}, ErrUnknownFlag
	}
	if spec.Operation == "" {
		spec.Operation = OpFindAll
	}
	if _, err := ParseOperation(string(spec.Operation)); err != nil {
		return Outcome{}, err
	}
	if spec.Timeout <= 0 {
		spec.Timeout = DefaultTimeout
	}

	re, err := compileFor(spec)
	if err != nil {
		return Outcome{}, err
	}
	re.MatchTimeout = spec.Timeout + abandonGrace

	ctx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	start := time.Now()
	worker := async.Go(ctx, func(context.Context) (Outcome, error) {
		return execute(re, spec)
	})

	out, err := worker.AwaitContext(ctx)
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, errEngineTimeout):
		return Outcome{}, &TimeoutError{Timeout: spec.Timeout, Elapsed: time.Since(start)}
	case errors.Is(err, async.ErrAbandoned):
		// Caller canceled; report the cancellation itself.
		return Outcome{}, ctx.Err()
	}
	return Outcome{}, err
}

// Compile checks pattern without running it.
func Compile(pattern string, flags Flags) error {
	if pattern == "" {
		return &SyntaxError{Reason: "empty pattern", Offset: 0, Err: ErrInvalidPattern}
	}
	_, err := compile(pattern, flags)
	return err
}

// compileFor compiles spec.Pattern for its operation. OpMatch gets a \A
// anchor so the engine only tries the first position. In verbose mode the
// closing parenthesis goes on its own line, out of reach of a trailing
// comment.
func compileFor(spec Spec) (*regexp2.Regexp, error) {
	re, err := compile(spec.Pattern, spec.Flags)
	if err != nil || spec.Operation != OpMatch {
		return re, err
	}

	tail := ")"
	if spec.Flags&Verbose != 0 {
		tail = "\n)"
	}
	anchored, err := regexp2.Compile(`\A(?:`+spec.Pattern+tail, spec.Flags.options())
	if err != nil {
		return nil, newSyntaxError(spec.Pattern, err)
	}
	return anchored, nil
}

func compile(pattern string, flags Flags) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, flags.options())
	if err != nil {
		return nil, newSyntaxError(pattern, err)
	}
	return re, nil
}
