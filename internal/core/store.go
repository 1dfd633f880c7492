package core

import (
	"sync"
)

// Store is the path-keyed table of configured mocks and literals. Keys keep their
// first insertion order and entries are never removed.
type Store struct {
	mu     sync.RWMutex
	keys   []string
	values map[string]any
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]any)}
}

// Get returns the entry stored at exactly key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]

	return value, ok
}

// GetOrCreate returns the entry at key, storing the result of create first if the
// key is absent.
func (s *Store) GetOrCreate(key string, create func() any) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value, ok := s.values[key]; ok {
		return value
	}

	value := create()
	s.insert(key, value)

	return value
}

// Keys returns the stored keys in insertion order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, len(s.keys))
	copy(keys, s.keys)

	return keys
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.keys)
}

// Lookup resolves key with exact-then-prefix semantics. See the package-level Lookup.
func (s *Store) Lookup(key string) (any, bool) {
	return Lookup(s, key)
}

// Set stores value at key. Replacing an entry keeps its original position.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insert(key, value)
}

type storeEntry struct {
	key   string
	value any
}

// entries snapshots the table so callers can descend into values without holding
// the lock.
func (s *Store) entries() []storeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]storeEntry, 0, len(s.keys))
	for _, key := range s.keys {
		snapshot = append(snapshot, storeEntry{key: key, value: s.values[key]})
	}

	return snapshot
}

// insert must be called with s.mu held for writing.
func (s *Store) insert(key string, value any) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}

	s.values[key] = value
}
