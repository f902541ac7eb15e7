package async

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Future is the one-shot result of a function running on its own goroutine.
// The only state shared between the worker and the waiter is the done channel;
// result and err are written before done is closed and read only after.
type Future[T any] struct {
	done   chan struct{}
	result T
	err    error
}

// Go starts fn on a new goroutine and returns immediately.
// A panic inside fn completes the future with ErrPanic instead of crashing the process.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.result = zero
				f.err = errors.Join(ErrPanic, fmt.Errorf("%v", r))
			}
		}()

		// Skip the work entirely when the caller already gave up.
		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}

		f.result, f.err = fn(ctx)
	}()

	return f
}

// Async runs fn with param on a new goroutine. It is Go with an explicit argument.
func Async[P any, T any](ctx context.Context, param P, fn func(context.Context, P) (T, error)) *Future[T] {
	return Go(ctx, func(ctx context.Context) (T, error) {
		return fn(ctx, param)
	})
}

// Await blocks until the worker finishes.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.result, f.err
}

// AwaitContext waits for the worker or for ctx, whichever comes first.
// When ctx wins the worker is abandoned: it keeps running, but whatever it
// produces later is never observed by this caller. The returned error wraps
// ErrAbandoned together with the context error.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) {
	// A finished worker wins over an already expired context.
	select {
	case <-f.done:
		return f.result, f.err
	default:
	}

	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero T
		return zero, errors.Join(ErrAbandoned, ctx.Err())
	}
}

// AwaitWithTimeout is AwaitContext with a relative deadline.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := f.AwaitContext(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return res, errors.Join(ErrTimeout, err)
	}
	return res, err
}

// Done exposes the completion channel for select statements.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// IsComplete reports whether the worker has finished, without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
