// Command guardd serves the guard layer over HTTP.
//
// Configuration is read from the environment and an optional .env file:
// GUARD_* for limits, the memo cache and rate limiting, REDIS_* when
// GUARD_CACHE_BACKEND is redis, HTTP_* for the server and LOG_LEVEL,
// LOG_FORMAT and APP_ENV for logging.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/inputguard/pkg/api"
	"github.com/dmitrymomot/inputguard/pkg/cache"
	"github.com/dmitrymomot/inputguard/pkg/clientip"
	"github.com/dmitrymomot/inputguard/pkg/config"
	"github.com/dmitrymomot/inputguard/pkg/guard"
	"github.com/dmitrymomot/inputguard/pkg/httpserver"
	"github.com/dmitrymomot/inputguard/pkg/logger"
	"github.com/dmitrymomot/inputguard/pkg/ratelimiter"
	"github.com/dmitrymomot/inputguard/pkg/redis"
	"github.com/dmitrymomot/inputguard/pkg/requestid"
)

type appConfig struct {
	Log      logger.Config
	Guard    guard.Config
	Rate     ratelimiter.Config
	ClientIP clientip.Config
	Redis    redis.Config
	HTTP     httpserver.Config
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "guardd:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load[appConfig]()
	if err != nil {
		return err
	}

	logOpts, err := cfg.Log.Options()
	if err != nil {
		return err
	}
	log := logger.New(append(logOpts, logger.WithContextExtractors(
		requestid.LoggerExtractor(),
		clientip.LoggerExtractor(),
	))...)

	backend := strings.ToLower(strings.TrimSpace(cfg.Guard.CacheBackend))

	var (
		client *goredis.Client
		checks []httpserver.Check
	)
	if backend == guard.CacheRedis {
		client, err = redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		checks = append(checks, redis.Healthcheck(client))
	}

	store, err := memoStore(backend, cfg, client, log)
	if err != nil {
		return err
	}

	limits := guard.LimitsFromConfig(cfg.Guard)
	g := guard.New(
		guard.WithLogger(log),
		guard.WithCache(store),
		guard.WithLimits(limits),
	)

	opts := []api.Option{
		api.WithLogger(log),
		api.WithReadinessChecks(checks...),
		api.WithClientIP(cfg.ClientIP),
	}
	if cfg.Rate.Enabled() {
		bucket, closeBucket, err := rateBucket(cfg.Rate, cfg.Redis, client)
		if err != nil {
			return err
		}
		defer closeBucket()
		opts = append(opts, api.WithRateLimiter(bucket))
	}
	svc := api.New(g, opts...)

	log.Info("starting guardd",
		logger.Size(limits.MaxSizeBytes()),
		slog.Int("max_depth", limits.MaxDepth()),
		slog.Duration("timeout", limits.Timeout()),
		slog.String("cache", backend),
		slog.Int("rate_burst", cfg.Rate.Capacity),
	)

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, svc.Handle())
}

// memoStore builds the configured memo cache. client is set only for the
// redis backend.
func memoStore(backend string, cfg appConfig, client *goredis.Client, log *slog.Logger) (cache.Store, error) {
	switch backend {
	case guard.CacheNone:
		return cache.Noop{}, nil

	case guard.CacheMemory, "":
		if cfg.Guard.CacheSize <= 0 {
			return cache.Noop{}, nil
		}
		mem := cache.NewMemoryStore(cfg.Guard.CacheSize)
		mem.OnEvict(func(key cache.Key) {
			log.Debug("memo entry evicted", slog.String("key", key.String()))
		})
		return mem, nil

	case guard.CacheRedis:
		return redis.NewStore(client, cfg.Redis, cfg.Guard.CacheTTL), nil
	}

	return nil, fmt.Errorf("unknown GUARD_CACHE_BACKEND %q: must be %s, %s or %s",
		cfg.Guard.CacheBackend, guard.CacheMemory, guard.CacheRedis, guard.CacheNone)
}

// rateBucket shares buckets through Redis when a client is connected and
// keeps them in memory otherwise.
func rateBucket(rate ratelimiter.Config, rcfg redis.Config, client *goredis.Client) (*ratelimiter.Bucket, func(), error) {
	if client != nil {
		b, err := ratelimiter.NewBucket(redis.NewRateStore(client, rcfg), rate)
		return b, func() {}, err
	}

	store := ratelimiter.NewMemoryStore(ratelimiter.WithIdleTimeout(rate.CleanupAfter))
	b, err := ratelimiter.NewBucket(store, rate)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return b, store.Close, nil
}
