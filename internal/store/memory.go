package store

import (
	"sync"
)

// MemoryStore memoises values by content fingerprint. When full, the oldest
// entry is evicted.
type MemoryStore[V any] struct {
	mu    sync.RWMutex
	max   int
	items map[string]V
	order []string
}

func NewMemoryStore[V any](max int) *MemoryStore[V] {
	if max <= 0 {
		max = 1
	}
	return &MemoryStore[V]{
		max:   max,
		items: make(map[string]V, max),
	}
}

func (s *MemoryStore[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

func (s *MemoryStore[V]) Put(key string, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		s.items[key] = v
		return
	}
	if len(s.order) >= s.max {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.items, oldest)
	}
	s.items[key] = v
	s.order = append(s.order, key)
}

func (s *MemoryStore[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
