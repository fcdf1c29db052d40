// Package schedule holds the fetched schedule and drives the once-per-second
// refresh that turns it into published state.
package schedule

import (
	"sync"
	"sync/atomic"

	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
)

// Store holds the latest fetched raw schedule. Each slot is replaced as a
// whole, so readers observe either the previous complete set or the new one.
type Store struct {
	times atomic.Pointer[prayer.TimeSet]
	sun   atomic.Pointer[prayer.SunTimes]

	mu      sync.RWMutex
	loading bool
	err     error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Times returns the cached prayer times, if any.
func (s *Store) Times() (prayer.TimeSet, bool) {
	p := s.times.Load()
	if p == nil {
		return prayer.TimeSet{}, false
	}
	return *p, true
}

// SetTimes replaces the prayer-time slot.
func (s *Store) SetTimes(t prayer.TimeSet) {
	s.times.Store(&t)
}

// Sun returns the cached sunrise and sunset, if any.
func (s *Store) Sun() (prayer.SunTimes, bool) {
	p := s.sun.Load()
	if p == nil {
		return prayer.SunTimes{}, false
	}
	return *p, true
}

// SetSun replaces the sunrise/sunset slot.
func (s *Store) SetSun(t prayer.SunTimes) {
	s.sun.Store(&t)
}

// Loading reports whether the prayer-time fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SetLoading sets the loading flag.
func (s *Store) SetLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// Err returns the last user-visible fetch error.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// SetErr records (or with nil, clears) the user-visible fetch error.
func (s *Store) SetErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
