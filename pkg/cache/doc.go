// Package cache memoizes guarded results by the content that produced them.
//
// A Key is the BLAKE2b-256 digest of length-prefixed fields, so two requests
// share a key only when every field is byte-for-byte equal:
//
//	key := cache.NewKey([]byte("structured"), []byte("json"), payload)
//
// Values are opaque encoded results. Because a key fully determines its
// value, stores need no coordination: concurrent writers store identical
// bytes and the last write wins harmlessly.
//
// Two stores are provided here:
//
//   - MemoryStore, a bounded, mutex-protected LRU for a single process.
//   - Noop, for turning memoization off.
//
// A Redis-backed store that shares results between processes lives in
// package redis.
package cache
