package cmap

// Range visits entries shard by shard until fn returns false. Each shard is
// read locked while its entries are visited, so fn must not write to m.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for i := range m.shards {
		if !m.shards[i].each(fn) {
			return
		}
	}
}

func (s *shard[K, V]) each(fn func(K, V) bool) bool {
	s.RLock()
	defer s.RUnlock()
	for k, v := range s.items {
		if !fn(k, v) {
			return false
		}
	}
	return true
}

// Values copies out every value. Use it instead of Range when the caller
// acts on entries in ways that may write to m, such as closing a connection
// that unregisters itself.
func (m *Map[K, V]) Values() []V {
	out := make([]V, 0, m.Count())
	m.Range(func(_ K, v V) bool {
		out = append(out, v)
		return true
	})
	return out
}
