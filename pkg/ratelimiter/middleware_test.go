package ratelimiter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inputguard/pkg/clientip"
	"github.com/dmitrymomot/inputguard/pkg/ratelimiter"
)

type failingStore struct{}

func (failingStore) ConsumeTokens(context.Context, string, int, ratelimiter.Config) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("store down")
}

func (failingStore) Reset(context.Context, string) error { return nil }

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func send(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	cfg := ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Minute}

	t.Run("headers and default denial", func(t *testing.T) {
		t.Parallel()
		h := ratelimiter.Middleware(newBucket(t, cfg, newClock()), ratelimiter.ByClientIP)(ok)

		rec := send(h, "192.0.2.1:1000")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))

		send(h, "192.0.2.1:1001")
		rec = send(h, "192.0.2.1:1002")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))

		assert.Equal(t, http.StatusOK, send(h, "192.0.2.2:1000").Code)
	})

	t.Run("custom denied handler", func(t *testing.T) {
		t.Parallel()
		var got ratelimiter.Result
		h := ratelimiter.Middleware(newBucket(t, cfg, newClock()), ratelimiter.ByClientIP,
			ratelimiter.WithDeniedHandler(func(w http.ResponseWriter, _ *http.Request, res ratelimiter.Result) {
				got = res
				w.WriteHeader(http.StatusTeapot)
			}),
		)(ok)

		send(h, "192.0.2.1:1")
		send(h, "192.0.2.1:1")
		rec := send(h, "192.0.2.1:1")
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.False(t, got.Allowed())
	})

	t.Run("store failure lets requests through", func(t *testing.T) {
		t.Parallel()
		b, err := ratelimiter.NewBucket(failingStore{}, cfg)
		require.NoError(t, err)
		h := ratelimiter.Middleware(b, ratelimiter.ByClientIP)(ok)

		rec := send(h, "192.0.2.1:1")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	})

	t.Run("empty key is not throttled", func(t *testing.T) {
		t.Parallel()
		h := ratelimiter.Middleware(newBucket(t, cfg, newClock()), func(*http.Request) string { return "" })(ok)
		for range 5 {
			assert.Equal(t, http.StatusOK, send(h, "192.0.2.1:1").Code)
		}
	})

	t.Run("key from clientip middleware", func(t *testing.T) {
		t.Parallel()
		h := clientip.Middleware(clientip.Config{TrustProxy: true})(
			ratelimiter.Middleware(newBucket(t, cfg, newClock()), ratelimiter.ByClientIP)(ok),
		)

		for _, remote := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.RemoteAddr = remote
			req.Header.Set("X-Forwarded-For", "203.0.113.5")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if remote == "10.0.0.3:1" {
				assert.Equal(t, http.StatusTooManyRequests, rec.Code)
			}
		}
	})
}
