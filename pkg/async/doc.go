// Package async runs a single computation on a detached goroutine and lets the
// caller wait for it with a deadline.
//
// The central type is Future. Go (or Async, which takes an explicit argument)
// starts the function and returns a *Future immediately. The caller then
// chooses how long it is willing to wait:
//
//   - Await blocks until the worker returns.
//   - AwaitContext returns as soon as either the worker returns or the context
//     is done.
//   - AwaitWithTimeout is AwaitContext with a relative timeout.
//
// # Detach and abandon
//
// Go code cannot kill a goroutine. When AwaitContext gives up, the worker keeps
// running until its function returns on its own; its result is written into
// the Future and never read. Nothing else is shared between the worker and the
// waiter, so an abandoned worker cannot corrupt or block later calls. Functions
// that may run for a long time should still observe the context or carry their
// own internal limit so abandoned workers eventually exit.
//
// # Usage
//
//	f := async.Go(ctx, func(ctx context.Context) ([]string, error) {
//	    return expensiveMatch(ctx, input)
//	})
//
//	ctx, cancel := context.WithTimeout(ctx, time.Second)
//	defer cancel()
//
//	res, err := f.AwaitContext(ctx)
//	if errors.Is(err, async.ErrAbandoned) {
//	    // deadline hit; the worker result will be discarded
//	}
//
// # Error Handling
//
//   - ErrAbandoned: AwaitContext returned because the context ended first.
//     Joined with the context error, so errors.Is(err, context.DeadlineExceeded)
//     also holds for deadlines.
//   - ErrTimeout: AwaitWithTimeout hit its timeout.
//   - ErrPanic: the worker panicked; the panic value is joined into the error.
package async
