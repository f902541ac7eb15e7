package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/inputguard/pkg/ratelimiter"
)

// consumeScript refills and drains one bucket atomically. The bucket is a
// hash {tokens, refill} with refill in unix milliseconds. A denied request
// leaves the tokens untouched.
var consumeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate     = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now      = tonumber(ARGV[4])
local want     = tonumber(ARGV[5])
local ttl      = tonumber(ARGV[6])

local state  = redis.call('HMGET', KEYS[1], 'tokens', 'refill')
local tokens = tonumber(state[1])
local refill = tonumber(state[2])
if tokens == nil or refill == nil then
	tokens = capacity
	refill = now
end

local intervals = math.floor((now - refill) / interval)
if intervals > 0 then
	tokens = math.min(tokens + intervals * rate, capacity)
	refill = refill + intervals * interval
end

local remaining = tokens - want
if remaining >= 0 then
	tokens = remaining
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'refill', refill)
redis.call('PEXPIRE', KEYS[1], ttl)
return {remaining, refill + interval}
`)

// RateStore keeps token buckets in Redis so every guardd instance draws from
// the same budget. It satisfies ratelimiter.Store.
type RateStore struct {
	db     redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ ratelimiter.Store = (*RateStore)(nil)

func NewRateStore(client redis.UniversalClient, cfg Config) *RateStore {
	return &RateStore{
		db:     client,
		prefix: cfg.RateKeyPrefix,
		now:    time.Now,
	}
}

func (s *RateStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg ratelimiter.Config) (int, time.Time, error) {
	interval := cfg.RefillInterval.Milliseconds()
	if interval <= 0 {
		interval = 1
	}
	// A bucket idle until full carries no information.
	refills := (int64(cfg.Capacity) + int64(cfg.RefillRate) - 1) / int64(cfg.RefillRate)
	ttl := (refills + 1) * interval

	vals, err := consumeScript.Run(ctx, s.db, []string{s.prefix + key},
		cfg.Capacity, cfg.RefillRate, interval, s.now().UnixMilli(), tokens, ttl,
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, err
	}
	if len(vals) != 2 {
		return 0, time.Time{}, fmt.Errorf("redis: unexpected rate limit reply %v", vals)
	}
	return int(vals[0]), time.UnixMilli(vals[1]), nil
}

func (s *RateStore) Reset(ctx context.Context, key string) error {
	return s.db.Del(ctx, s.prefix+key).Err()
}
