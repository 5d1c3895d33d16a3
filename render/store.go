package render

import (
	"maps"
	"slices"
	"sync"

	"github.com/ardnew/stuart/lang"
)

// Store is the build-scoped key-value store shared by all page renders.
// Values are deep-copied in both directions. It is safe for concurrent use.
type Store struct {
	m  map[string]lang.Value
	mu sync.RWMutex
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{m: make(map[string]lang.Value)}
}

// Get returns a copy of the value stored under name.
func (s *Store) Get(name string) (lang.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[name]
	if !ok {
		return lang.Value{}, false
	}

	return v.Clone(), true
}

// Set stores a copy of v under name.
func (s *Store) Set(name string, v lang.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m[name] = v.Clone()
}

// Keys returns the stored names in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.m))
}
