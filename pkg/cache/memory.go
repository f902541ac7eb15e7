package cache

import (
	"container/list"
	"context"
	"sync"
)

type memoryEntry struct {
	key   Key
	value []byte
}

// MemoryStore is a bounded in-process Store. When full, the least recently
// used entry is evicted. Values are copied on the way in and out, so callers
// cannot alter stored results.
type MemoryStore struct {
	capacity int
	items    map[Key]*list.Element
	eviction *list.List
	mu       sync.Mutex
	onEvict  func(key Key)
}

// NewMemoryStore creates a store for at most capacity entries.
// The capacity must be positive, otherwise it panics.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		panic("cache: memory store capacity must be positive")
	}
	return &MemoryStore{
		capacity: capacity,
		items:    make(map[Key]*list.Element, capacity),
		eviction: list.New(),
	}
}

// OnEvict registers a callback run, under the store lock, for every entry
// dropped to make room.
func (s *MemoryStore) OnEvict(fn func(key Key)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvict = fn
}

func (s *MemoryStore) Get(_ context.Context, key Key) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	s.eviction.MoveToFront(elem)
	return clone(elem.Value.(*memoryEntry).value), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key Key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[key]; ok {
		s.eviction.MoveToFront(elem)
		elem.Value.(*memoryEntry).value = clone(value)
		return nil
	}

	s.items[key] = s.eviction.PushFront(&memoryEntry{key: key, value: clone(value)})
	if s.eviction.Len() > s.capacity {
		s.evictOldest()
	}
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eviction.Len()
}

// Purge drops every entry without running the eviction callback.
func (s *MemoryStore) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[Key]*list.Element, s.capacity)
	s.eviction.Init()
}

// Must be called with lock held.
func (s *MemoryStore) evictOldest() {
	elem := s.eviction.Back()
	if elem == nil {
		return
	}
	s.eviction.Remove(elem)
	entry := elem.Value.(*memoryEntry)
	delete(s.items, entry.key)

	if s.onEvict != nil {
		s.onEvict(entry.key)
	}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append(make([]byte, 0, len(b)), b...)
}
