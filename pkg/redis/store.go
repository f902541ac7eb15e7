package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/inputguard/pkg/cache"
)

// Store keeps memoized results in Redis so several processes share them.
// It satisfies cache.Store.
type Store struct {
	db            redis.UniversalClient
	prefix        string
	ttl           time.Duration
	scanBatchSize int64
}

var _ cache.Store = (*Store)(nil)

// NewStore wraps client. Entries expire after ttl; zero keeps them until
// Redis evicts them.
func NewStore(client redis.UniversalClient, cfg Config, ttl time.Duration) *Store {
	batch := cfg.ScanBatchSize
	if batch <= 0 {
		batch = 500
	}
	return &Store{
		db:            client,
		prefix:        cfg.KeyPrefix,
		ttl:           ttl,
		scanBatchSize: batch,
	}
}

// Get maps redis.Nil to a miss.
func (s *Store) Get(ctx context.Context, key cache.Key) ([]byte, bool, error) {
	val, err := s.db.Get(ctx, s.prefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *Store) Set(ctx context.Context, key cache.Key, value []byte) error {
	return s.db.Set(ctx, s.prefix+key.String(), value, s.ttl).Err()
}

// Purge deletes every entry under the store's prefix using SCAN, so Redis is
// never blocked by a KEYS call. It returns the number of deleted entries.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := s.db.Scan(ctx, cursor, s.prefix+"*", s.scanBatchSize).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := s.db.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}
