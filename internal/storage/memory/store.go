// Package memory provides in-memory storage for tinykv.
package memory

import (
	"time"

	"github.com/yndnr/tinykv/pkg/cmap"
)

// Observer receives store lifecycle notifications.
type Observer interface {
	// OnExpired is called after Get removed an expired entry.
	OnExpired(key string)
}

// Store is the shared key-value store.
type Store struct {
	entries  *cmap.Map[string, Entry]
	now      func() time.Time
	observer Observer
}

// Option configures the Store.
type Option func(*Store)

// WithClock sets the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithShards sets the number of map shards (power of 2).
func WithShards(n int) Option {
	return func(s *Store) {
		s.entries = cmap.NewWithShards[string, Entry](n)
	}
}

// WithObserver registers an observer for expirations.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observer = o
	}
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		entries: cmap.New[string, Entry](),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Set inserts or replaces the entry for key. Value and expiry are replaced
// together; a zero expiresAt clears any previous expiry.
func (s *Store) Set(key, value string, expiresAt time.Time) {
	s.entries.Set(key, Entry{Value: value, ExpiresAt: expiresAt})
}

// Get returns the value for key if it is present and not expired.
// An expired entry is removed as part of the call.
func (s *Store) Get(key string) (string, bool) {
	now := s.now()
	entry, ok, evicted := s.entries.GetOrEvict(key, func(e Entry) bool {
		return e.IsExpired(now)
	})
	if evicted && s.observer != nil {
		s.observer.OnExpired(key)
	}
	if !ok {
		return "", false
	}
	return entry.Value, true
}

// Len returns the number of stored entries, including expired entries
// that no Get has observed yet.
func (s *Store) Len() int {
	return s.entries.Count()
}

// Now returns the current time of the store's clock.
func (s *Store) Now() time.Time {
	return s.now()
}
