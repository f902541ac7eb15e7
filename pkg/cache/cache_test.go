package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inputguard/pkg/cache"
)

func TestNewKey(t *testing.T) {
	t.Parallel()

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()
		a := cache.NewKey([]byte("pattern"), []byte(`(a+)+$`), []byte("aaa"))
		b := cache.NewKey([]byte("pattern"), []byte(`(a+)+$`), []byte("aaa"))
		assert.Equal(t, a, b)
		assert.Len(t, a.String(), 64)
	})

	t.Run("field boundaries matter", func(t *testing.T) {
		t.Parallel()
		assert.NotEqual(t, cache.NewKey([]byte("ab"), []byte("c")), cache.NewKey([]byte("a"), []byte("bc")))
	})

	t.Run("empty and missing fields differ", func(t *testing.T) {
		t.Parallel()
		assert.NotEqual(t, cache.NewKey([]byte("a")), cache.NewKey([]byte("a"), nil))
	})
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	key := func(s string) cache.Key { return cache.NewKey([]byte(s)) }

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()
		s := cache.NewMemoryStore(2)

		require.NoError(t, s.Set(ctx, key("a"), []byte("1")))
		v, ok, err := s.Get(ctx, key("a"))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("1"), v)

		_, ok, err = s.Get(ctx, key("missing"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		t.Parallel()
		s := cache.NewMemoryStore(2)

		var evicted []cache.Key
		s.OnEvict(func(k cache.Key) { evicted = append(evicted, k) })

		require.NoError(t, s.Set(ctx, key("a"), []byte("1")))
		require.NoError(t, s.Set(ctx, key("b"), []byte("2")))
		_, _, _ = s.Get(ctx, key("a"))
		require.NoError(t, s.Set(ctx, key("c"), []byte("3")))

		assert.Equal(t, 2, s.Len())
		assert.Equal(t, []cache.Key{key("b")}, evicted)

		_, ok, _ := s.Get(ctx, key("b"))
		assert.False(t, ok)
		_, ok, _ = s.Get(ctx, key("a"))
		assert.True(t, ok)
	})

	t.Run("values are copied", func(t *testing.T) {
		t.Parallel()
		s := cache.NewMemoryStore(1)

		in := []byte("abc")
		require.NoError(t, s.Set(ctx, key("a"), in))
		in[0] = 'X'

		out, _, _ := s.Get(ctx, key("a"))
		assert.Equal(t, []byte("abc"), out)
		out[0] = 'Y'

		again, _, _ := s.Get(ctx, key("a"))
		assert.Equal(t, []byte("abc"), again)
	})

	t.Run("purge", func(t *testing.T) {
		t.Parallel()
		s := cache.NewMemoryStore(4)
		require.NoError(t, s.Set(ctx, key("a"), []byte("1")))
		s.Purge()
		assert.Equal(t, 0, s.Len())
	})

	t.Run("non-positive capacity panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { cache.NewMemoryStore(0) })
	})

	t.Run("concurrent writers", func(t *testing.T) {
		t.Parallel()
		s := cache.NewMemoryStore(16)

		var wg sync.WaitGroup
		for i := range 32 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				k := key(fmt.Sprint(i % 8))
				_ = s.Set(ctx, k, []byte(fmt.Sprint(i%8)))
				_, _, _ = s.Get(ctx, k)
			}()
		}
		wg.Wait()
		assert.Equal(t, 8, s.Len())
	})
}

func TestNoop(t *testing.T) {
	t.Parallel()

	var s cache.Store = cache.Noop{}
	require.NoError(t, s.Set(context.Background(), cache.NewKey(), []byte("x")))
	_, ok, err := s.Get(context.Background(), cache.NewKey())
	require.NoError(t, err)
	assert.False(t, ok)
}
