package cmap

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is the shard count used when none is configured.
const DefaultShardCount = 16

// Map is a concurrent map from string keys to values of type V. The zero
// value is not usable; call New or NewWithShards.
type Map[V any] struct {
	shards []*shard[V]
	mask   uint32
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// New returns a Map with DefaultShardCount shards.
func New[V any]() *Map[V] {
	return NewWithShards[V](DefaultShardCount)
}

// NewWithShards returns a Map with n shards. n must be a power of two;
// anything else falls back to DefaultShardCount.
func NewWithShards[V any](n int) *Map[V] {
	if n < 1 || n&(n-1) != 0 {
		n = DefaultShardCount
	}
	shards := make([]*shard[V], n)
	for i := range shards {
		shards[i] = &shard[V]{items: map[string]V{}}
	}
	return &Map[V]{shards: shards, mask: uint32(n - 1)}
}

func (m *Map[V]) shardFor(key string) *shard[V] {
	return m.shards[murmur3.Sum32([]byte(key))&m.mask]
}

// Get returns the value stored under key and whether the key is present.
func (m *Map[V]) Get(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (m *Map[V]) Set(key string, value V) {
	s := m.shardFor(key)
	s.mu.Lock()
	s.items[key] = value
	s.mu.Unlock()
}

// Delete removes key and reports whether it was present.
func (m *Map[V]) Delete(key string) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	_, ok := s.items[key]
	delete(s.items, key)
	s.mu.Unlock()
	return ok
}

// Has reports whether key is present.
func (m *Map[V]) Has(key string) bool {
	s := m.shardFor(key)
	s.mu.RLock()
	_, ok := s.items[key]
	s.mu.RUnlock()
	return ok
}

// Count returns the number of keys. Shards are counted one at a time, so
// under concurrent writes the result is a point-in-time approximation.
func (m *Map[V]) Count() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// Clear removes every key.
func (m *Map[V]) Clear() {
	for _, s := range m.shards {
		s.mu.Lock()
		s.items = map[string]V{}
		s.mu.Unlock()
	}
}

// ShardCount reports the number of shards.
func (m *Map[V]) ShardCount() int {
	return len(m.shards)
}
