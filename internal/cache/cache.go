// Package cache provides the memoization tables used by the content loader.
package cache

import "sync"

// Cache is a memoization table. Absence from Get is the signal to compute
// the value and Set it; entries are never evicted.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
}

// Memory is an unbounded in-memory Cache. It lives as long as its owner and
// has no invalidation path, so it must only front data that does not change
// while the owner is in use.
type Memory[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

// NewMemory returns an empty Memory cache.
func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{entries: make(map[string]V)}
}

func (m *Memory[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *Memory[V]) Set(key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

// Len reports the number of stored entries.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Noop is a disabled Cache: every Get misses and Set discards.
type Noop[V any] struct{}

// NewNoop returns a disabled cache.
func NewNoop[V any]() Noop[V] {
	return Noop[V]{}
}

func (Noop[V]) Get(string) (V, bool) {
	var zero V
	return zero, false
}

func (Noop[V]) Set(string, V) {}
