package memory

import (
	"context"
	"sync"
	"time"

	"github.com/target/content-portal/internal/ports"
)

var _ ports.ReturnToSlot = (*ReturnToSlot)(nil)

type slotEntry struct {
	destination string
	expiresAt   time.Time
}

// slotSweepInterval bounds how often Save scans for expired scopes.
const slotSweepInterval = time.Minute

// ReturnToSlot keeps one destination per scope with a TTL. Expired scopes are
// removed on Load and by a periodic sweep during Save.
type ReturnToSlot struct {
	mu        sync.Mutex
	entries   map[string]slotEntry
	now       func() time.Time
	nextSweep time.Time
}

// NewReturnToSlot returns an empty slot store using the wall clock.
func NewReturnToSlot() *ReturnToSlot {
	return NewReturnToSlotWithClock(time.Now)
}

// NewReturnToSlotWithClock allows tests to control expiry.
func NewReturnToSlotWithClock(now func() time.Time) *ReturnToSlot {
	return &ReturnToSlot{entries: make(map[string]slotEntry), now: now}
}

func (s *ReturnToSlot) Save(_ context.Context, scope, destination string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if !now.Before(s.nextSweep) {
		s.sweepLocked(now)
		s.nextSweep = now.Add(slotSweepInterval)
	}
	s.entries[scope] = slotEntry{destination: destination, expiresAt: now.Add(ttl)}
	return nil
}

func (s *ReturnToSlot) sweepLocked(now time.Time) {
	for scope, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, scope)
		}
	}
}

// Len reports how many scopes are held, expired or not.
func (s *ReturnToSlot) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *ReturnToSlot) Load(_ context.Context, scope string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[scope]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, scope)
		return "", false, nil
	}
	return e.destination, true, nil
}

func (s *ReturnToSlot) Clear(_ context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, scope)
	return nil
}
