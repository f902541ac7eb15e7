// Package pattern evaluates user supplied regular expressions under a hard
// wall-clock deadline.
//
// Patterns use a backtracking engine (github.com/dlclark/regexp2) so that
// lookarounds, backreferences and the other constructs users expect from a
// regex tester work. The same engine is exposed to catastrophic backtracking,
// e.g. (a+)+$ against a long run of "a" followed by a mismatch. Run therefore
// compiles and executes every pattern on a detached worker goroutine and waits
// for it only until the deadline:
//
//	out, err := pattern.Evaluate(ctx, `(\w+)@(\w+)\.com`, pattern.IgnoreCase, text, time.Second)
//	switch {
//	case errors.Is(err, pattern.ErrTimeoutExceeded):
//	    // the worker was abandoned; its result will never be read
//	case errors.Is(err, pattern.ErrInvalidPattern):
//	    var se *pattern.SyntaxError
//	    errors.As(err, &se)
//	}
//
// The worker shares nothing with the caller except a one-shot future
// (see package async). The compiled expression also carries the engine's own
// MatchTimeout, slightly longer than the caller's deadline, so an abandoned
// worker stops consuming CPU soon after the caller has moved on.
//
// Operations mirror the classic regex tester: FindAll (default), Match
// (anchored at the start), Search, Split and Substitute. Offsets in Match and
// Group are character (rune) offsets into the original text.
package pattern
