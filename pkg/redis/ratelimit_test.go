package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inputguard/pkg/ratelimiter"
	"github.com/dmitrymomot/inputguard/pkg/redis"
)

func TestRateStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := redis.Config{RateKeyPrefix: "rate:"}
	limit := ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Hour}

	t.Run("drains then denies without going further negative", func(t *testing.T) {
		t.Parallel()
		mr, client := newClient(t)
		b, err := ratelimiter.NewBucket(redis.NewRateStore(client, cfg), limit)
		require.NoError(t, err)

		for i := range 3 {
			res, err := b.Allow(ctx, "203.0.113.1")
			require.NoError(t, err)
			assert.Equal(t, 2-i, res.Remaining)
		}
		for range 2 {
			res, err := b.Allow(ctx, "203.0.113.1")
			require.NoError(t, err)
			assert.False(t, res.Allowed())
			assert.Equal(t, -1, res.Remaining)
		}

		assert.True(t, mr.Exists("rate:203.0.113.1"))
		assert.Positive(t, mr.TTL("rate:203.0.113.1"))
	})

	t.Run("reset deletes the bucket", func(t *testing.T) {
		t.Parallel()
		mr, client := newClient(t)
		store := redis.NewRateStore(client, cfg)
		b, err := ratelimiter.NewBucket(store, limit)
		require.NoError(t, err)

		_, err = b.AllowN(ctx, "k", 3)
		require.NoError(t, err)
		require.NoError(t, b.Reset(ctx, "k"))
		assert.False(t, mr.Exists("rate:k"))

		res, err := b.Status(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, 3, res.Remaining)
	})

	t.Run("reset time is one interval after the last refill", func(t *testing.T) {
		t.Parallel()
		_, client := newClient(t)
		b, err := ratelimiter.NewBucket(redis.NewRateStore(client, cfg), limit)
		require.NoError(t, err)

		before := time.Now()
		res, err := b.Allow(ctx, "k")
		require.NoError(t, err)
		assert.WithinDuration(t, before.Add(time.Hour), res.ResetAt, 5*time.Second)
	})
}
