// Package cmap is a concurrent map split into murmur3-routed shards.
//
// Each shard has its own RWMutex, so operations on keys in different
// shards do not contend. Single-key operations are atomic. Range and
// Values lock one shard at a time and do not see a consistent snapshot.
//
//	m := cmap.New[string, Entry]()
//	m.Set("key", entry)
//	v, ok := m.Get("key")
package cmap
