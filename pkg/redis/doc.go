// Package redis connects to Redis and exposes it as a shared memoization
// store for guarded results and a shared rate limit store.
//
// Connect retries the initial ping according to Config. Store implements
// cache.Store with one string key per result under Config.KeyPrefix, written
// with SET and a TTL. RateStore implements ratelimiter.Store with one hash
// per bucket under Config.RateKeyPrefix, updated by a Lua script.
// Healthcheck plugs the client into a readiness check.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	store := redis.NewStore(client, cfg, 10*time.Minute)
//	g := guard.New(guard.WithCache(store))
//
// Errors are sentinel values joined with the go-redis error via errors.Join.
package redis
