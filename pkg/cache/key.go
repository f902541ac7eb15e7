package cache

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Key identifies a memoized result by the content of everything that
// produced it.
type Key [blake2b.Size256]byte

// String returns the lowercase hex form of the key.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// NewKey hashes fields with BLAKE2b-256. Every field is length-prefixed, so
// ("ab", "c") and ("a", "bc") never collide.
func NewKey(fields ...[]byte) Key {
	h, _ := blake2b.New256(nil) // only fails for keys longer than 64 bytes
	var n [binary.MaxVarintLen64]byte
	for _, f := range fields {
		_, _ = h.Write(n[:binary.PutUvarint(n[:], uint64(len(f)))])
		_, _ = h.Write(f)
	}

	var k Key
	h.Sum(k[:0])
	return k
}
