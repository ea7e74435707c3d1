package authz

import "sync"

// Registry maps browser session IDs to their stores.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// Lookup returns the store for sessionID without creating one.
func (r *Registry) Lookup(sessionID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[sessionID]
	return s, ok
}

// Put registers store under sessionID, replacing any existing entry without clearing it.
func (r *Registry) Put(sessionID string, store *Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[sessionID] = store
}

// Drop forgets sessionID. The dropped store is cleared so its listeners observe the logout.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	s, ok := r.stores[sessionID]
	delete(r.stores, sessionID)
	r.mu.Unlock()
	if ok {
		s.Clear()
	}
}

// Len reports how many sessions are tracked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
