package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inputguard/pkg/cache"
	"github.com/dmitrymomot/inputguard/pkg/redis"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := redis.Config{KeyPrefix: "test:"}

	t.Run("miss then hit", func(t *testing.T) {
		t.Parallel()
		mr, client := newClient(t)
		s := redis.NewStore(client, cfg, time.Minute)
		key := cache.NewKey([]byte("a"))

		_, ok, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.Set(ctx, key, []byte(`{"kind":"pattern"}`)))

		v, ok, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte(`{"kind":"pattern"}`), v)
		assert.True(t, mr.Exists("test:"+key.String()))
	})

	t.Run("entries expire", func(t *testing.T) {
		t.Parallel()
		mr, client := newClient(t)
		s := redis.NewStore(client, cfg, time.Minute)
		key := cache.NewKey([]byte("b"))

		require.NoError(t, s.Set(ctx, key, []byte("x")))
		mr.FastForward(2 * time.Minute)

		_, ok, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("purge removes only prefixed keys", func(t *testing.T) {
		t.Parallel()
		mr, client := newClient(t)
		s := redis.NewStore(client, cfg, 0)

		for _, f := range []string{"1", "2", "3"} {
			require.NoError(t, s.Set(ctx, cache.NewKey([]byte(f)), []byte(f)))
		}
		require.NoError(t, mr.Set("other", "keep"))

		n, err := s.Purge(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.True(t, mr.Exists("other"))
	})

	t.Run("server errors surface", func(t *testing.T) {
		t.Parallel()
		mr, client := newClient(t)
		s := redis.NewStore(client, cfg, 0)
		mr.Close()

		_, ok, err := s.Get(ctx, cache.NewKey([]byte("c")))
		assert.Error(t, err)
		assert.False(t, ok)
	})
}

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("connects", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)

		client, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "redis://" + mr.Addr() + "/0",
			RetryAttempts:  2,
			RetryInterval:  10 * time.Millisecond,
			ConnectTimeout: time.Second,
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		assert.NoError(t, redis.Healthcheck(client)(context.Background()))
	})

	t.Run("bad url", func(t *testing.T) {
		t.Parallel()
		_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "nope://"})
		assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "redis://" + addr + "/0",
			RetryAttempts:  2,
			RetryInterval:  10 * time.Millisecond,
			ConnectTimeout: time.Second,
		})
		assert.ErrorIs(t, err, redis.ErrRedisNotReady)
	})

	t.Run("healthcheck fails when server goes away", func(t *testing.T) {
		t.Parallel()
		mr, client := newClient(t)
		mr.Close()
		assert.ErrorIs(t, redis.Healthcheck(client)(context.Background()), redis.ErrHealthcheckFailed)
	})
}
