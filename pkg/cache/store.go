package cache

import "context"

// Store holds encoded results by key. Implementations must be safe for
// concurrent use. Writes for a key always carry the same value, so a store
// may drop, overwrite or expire entries freely.
type Store interface {
	// Get reports ok=false on a miss. An error is never a hit.
	Get(ctx context.Context, key Key) (value []byte, ok bool, err error)
	Set(ctx context.Context, key Key, value []byte) error
}

// Noop is a Store that never holds anything.
type Noop struct{}

func (Noop) Get(context.Context, Key) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(context.Context, Key, []byte) error { return nil }
