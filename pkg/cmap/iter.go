package cmap

// Range calls fn for every entry until fn returns false. Each shard is
// locked only while it is being walked, so entries written to an already
// visited shard during the walk are not seen. fn must not call back into
// the same Map.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for _, s := range m.shards {
		s.mu.RLock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Keys returns every key in unspecified order.
func (m *Map[V]) Keys() []string {
	keys := make([]string, 0, m.Count())
	m.Range(func(k string, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// GetOrSet returns the existing value under key, or stores and returns
// value if the key was absent. The boolean reports whether the key already
// existed.
func (m *Map[V]) GetOrSet(key string, value V) (V, bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.items[key]; ok {
		return v, true
	}
	s.items[key] = value
	return value, false
}

// Update replaces the value under key with fn's result, holding the
// shard's lock across the read-modify-write so concurrent updates of the
// same key never interleave. fn receives the current value, or the zero V
// with exists false when the key is absent. The stored result is returned.
func (m *Map[V]) Update(key string, fn func(value V, exists bool) V) V {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	next := fn(v, ok)
	s.items[key] = next
	return next
}
