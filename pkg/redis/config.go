package redis

import "time"

// Config describes the Redis connection shared by the memo cache and the
// rate limiter.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`     // ConnectionURL in the form "redis://:password@localhost:6379/0".
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`                 // RetryAttempts is how many times Connect pings before giving up.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`                // RetryInterval is the pause between attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"15s"`              // ConnectTimeout bounds all attempts together.
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"inputguard:memo:"`      // KeyPrefix namespaces memo entries.
	ScanBatchSize  int64         `env:"REDIS_SCAN_BATCH_SIZE" envDefault:"500"`              // ScanBatchSize is the SCAN COUNT hint used by Purge.
	RateKeyPrefix  string        `env:"REDIS_RATE_KEY_PREFIX" envDefault:"inputguard:rate:"` // RateKeyPrefix namespaces rate limit buckets.
}
