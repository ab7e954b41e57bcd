package cmap

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is used by New and for invalid NewWithShards counts.
const DefaultShardCount = 16

// Map is a string-keyed map split across independently locked shards.
type Map[K ~string, V any] struct {
	shards []shard[K, V]
	mask   uint32
}

type shard[K ~string, V any] struct {
	sync.RWMutex
	items map[K]V
}

// New returns a Map with DefaultShardCount shards.
func New[K ~string, V any]() *Map[K, V] {
	return NewWithShards[K, V](DefaultShardCount)
}

// NewWithShards returns a Map with n shards. n must be a power of two,
// otherwise DefaultShardCount is used.
func NewWithShards[K ~string, V any](n int) *Map[K, V] {
	if n < 1 || n&(n-1) != 0 {
		n = DefaultShardCount
	}
	m := &Map[K, V]{
		shards: make([]shard[K, V], n),
		mask:   uint32(n - 1),
	}
	for i := range m.shards {
		m.shards[i].items = make(map[K]V)
	}
	return m
}

func (m *Map[K, V]) shardFor(key K) *shard[K, V] {
	return &m.shards[murmur3.Sum32([]byte(key))&m.mask]
}

// Get returns the value under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	s := m.shardFor(key)
	s.RLock()
	v, ok := s.items[key]
	s.RUnlock()
	return v, ok
}

// Set stores value under key.
func (m *Map[K, V]) Set(key K, value V) {
	s := m.shardFor(key)
	s.Lock()
	s.items[key] = value
	s.Unlock()
}

// Delete removes key if present.
func (m *Map[K, V]) Delete(key K) {
	s := m.shardFor(key)
	s.Lock()
	delete(s.items, key)
	s.Unlock()
}

// Has reports whether key is present.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// GetOrEvict looks up key and asks stale whether the value is still
// usable. A stale value is deleted and not returned. stale is evaluated
// again under the write lock before deleting, so a value replaced between
// the read and the delete survives.
//
// ok reports a live value. evicted reports that this call deleted key.
func (m *Map[K, V]) GetOrEvict(key K, stale func(V) bool) (value V, ok, evicted bool) {
	s := m.shardFor(key)

	s.RLock()
	v, found := s.items[key]
	s.RUnlock()
	switch {
	case !found:
		return value, false, false
	case !stale(v):
		return v, true, false
	}

	s.Lock()
	defer s.Unlock()
	v, found = s.items[key]
	switch {
	case !found:
		return value, false, false
	case !stale(v):
		return v, true, false
	}
	delete(s.items, key)
	return value, false, true
}

// Count sums the shard sizes. Concurrent writers can make the result stale
// by the time it returns.
func (m *Map[K, V]) Count() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.RLock()
		n += len(s.items)
		s.RUnlock()
	}
	return n
}

// ShardCount reports the number of shards.
func (m *Map[K, V]) ShardCount() int { return len(m.shards) }

// GetOrCompute returns the value under key, storing create() first if key
// is absent. create runs under the shard write lock, at most once per
// missing key. loaded reports whether the value already existed.
func (m *Map[K, V]) GetOrCompute(key K, create func() V) (value V, loaded bool) {
	s := m.shardFor(key)

	s.RLock()
	v, ok := s.items[key]
	s.RUnlock()
	if ok {
		return v, true
	}

	s.Lock()
	defer s.Unlock()
	if v, ok := s.items[key]; ok {
		return v, true
	}
	v = create()
	s.items[key] = v
	return v, false
}
