package cache

import (
	"sync"
	"time"
)

// Store is a keyed whole-result cache with a bounded time-to-live.
// Each entry holds one value and its expiry timestamp; a lookup either
// serves a not-yet-expired value or reports a miss so the caller can
// recompute and overwrite the entry.
type Store[T any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]entry[T]
	now   func() time.Time
}

type entry[T any] struct {
	data      T
	expiresAt time.Time
}

// New creates a Store with the given time-to-live.
func New[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		ttl:   ttl,
		items: make(map[string]entry[T]),
		now:   time.Now,
	}
}

// Get retrieves a value from the cache
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	item, exists := s.items[key]
	if !exists {
		return zero, false
	}

	// Check if expired
	if s.now().After(item.expiresAt) {
		delete(s.items, key)
		return zero, false
	}

	return item.data, true
}

// Set stores a value in the cache, overwriting any previous entry
func (s *Store[T]) Set(key string, data T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = entry[T]{
		data:      data,
		expiresAt: s.now().Add(s.ttl),
	}
}

// Invalidate removes a key from the cache
func (s *Store[T]) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// InvalidateAll drops every entry
func (s *Store[T]) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]entry[T])
}

// CleanExpired removes all expired entries and returns count of removed items
func (s *Store[T]) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, item := range s.items {
		if now.After(item.expiresAt) {
			delete(s.items, key)
			removed++
		}
	}

	return removed
}

// Size returns the current number of items in the cache
func (s *Store[T]) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// SetClock overrides the time source. Intended for tests.
func (s *Store[T]) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
