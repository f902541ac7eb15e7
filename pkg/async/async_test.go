package async_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inputguard/pkg/async"
)

func TestGo(t *testing.T) {
	t.Parallel()

	t.Run("returns worker result", func(t *testing.T) {
		t.Parallel()
		f := async.Go(context.Background(), func(context.Context) (string, error) {
			time.Sleep(10 * time.Millisecond)
			return "done", nil
		})

		res, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, "done", res)
		assert.True(t, f.IsComplete())
	})

	t.Run("returns worker error", func(t *testing.T) {
		t.Parallel()
		want := errors.New("boom")
		f := async.Go(context.Background(), func(context.Context) (int, error) {
			return 0, want
		})

		_, err := f.Await()
		assert.ErrorIs(t, err, want)
	})

	t.Run("recovers panics", func(t *testing.T) {
		t.Parallel()
		f := async.Go(context.Background(), func(context.Context) (int, error) {
			panic("kaboom")
		})

		res, err := f.Await()
		assert.ErrorIs(t, err, async.ErrPanic)
		assert.Contains(t, err.Error(), "kaboom")
		assert.Zero(t, res)
	})

	t.Run("skips work for canceled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var called atomic.Bool
		f := async.Go(ctx, func(context.Context) (int, error) {
			called.Store(true)
			return 1, nil
		})

		_, err := f.Await()
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called.Load())
	})
}

func TestAsync(t *testing.T) {
	t.Parallel()

	f := async.Async(context.Background(), 42, func(_ context.Context, n int) (string, error) {
		return fmt.Sprintf("Number: %d", n), nil
	})

	res, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, "Number: 42", res)
}

func TestFuture_AwaitContext(t *testing.T) {
	t.Parallel()

	t.Run("worker finishes first", func(t *testing.T) {
		t.Parallel()
		f := async.Go(context.Background(), func(context.Context) (int, error) {
			return 7, nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		res, err := f.AwaitContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, 7, res)
	})

	t.Run("deadline abandons worker", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		defer close(release)

		f := async.Go(context.Background(), func(context.Context) (int, error) {
			<-release
			return 1, nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		res, err := f.AwaitContext(ctx)
		elapsed := time.Since(start)

		assert.ErrorIs(t, err, async.ErrAbandoned)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Zero(t, res)
		assert.Less(t, elapsed, 500*time.Millisecond)
		assert.False(t, f.IsComplete())
	})

	t.Run("completed worker wins over expired context", func(t *testing.T) {
		t.Parallel()
		f := async.Go(context.Background(), func(context.Context) (int, error) {
			return 3, nil
		})
		<-f.Done()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := f.AwaitContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, res)
	})
}

func TestFuture_AwaitWithTimeout(t *testing.T) {
	t.Parallel()

	f := async.Go(context.Background(), func(ctx context.Context) (int, error) {
		time.Sleep(200 * time.Millisecond)
		return 1, nil
	})

	_, err := f.AwaitWithTimeout(10 * time.Millisecond)
	assert.ErrorIs(t, err, async.ErrTimeout)

	// The abandoned worker still completes on its own.
	res, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 1, res)
}
