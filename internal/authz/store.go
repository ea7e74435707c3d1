// Package authz holds in-memory authorization state for browser sessions.
// State is never persisted; a process restart logs every session out.
package authz

import (
	"sync"

	domainauth "github.com/target/content-portal/internal/domain/auth"
)

// Listener is invoked synchronously with the new state on every Set or Clear.
type Listener func(domainauth.AuthorizationState)

// Store is the single source of truth for one session's authorization state.
// It is safe for concurrent use; listeners run on the caller's goroutine, outside the lock.
type Store struct {
	mu        sync.RWMutex
	state     domainauth.AuthorizationState
	listeners map[uint64]Listener
	nextID    uint64
}

// NewStore returns a store in the logged-out state.
func NewStore() *Store {
	return &Store{listeners: make(map[uint64]Listener)}
}

// Get returns a copy of the current state.
func (s *Store) Get() domainauth.AuthorizationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Set replaces the whole state and notifies listeners.
// A state without a role is stored as fully absent.
func (s *Store) Set(state domainauth.AuthorizationState) {
	next := domainauth.AuthorizationState{}
	if state.IsAuthenticated() {
		next = state.Clone()
	}

	s.mu.Lock()
	s.state = next
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next.Clone())
	}
}

// Clear resets to the logged-out state.
func (s *Store) Clear() {
	s.Set(domainauth.AuthorizationState{})
}

// HasPageAccess reports whether the current state may view page.
func (s *Store) HasPageAccess(page domainauth.PageID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.HasPageAccess(page)
}

// Subscribe registers fn and returns a function that removes it. Unsubscribe is idempotent.
func (s *Store) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}
