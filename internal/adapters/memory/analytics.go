package memory

import (
	"context"
	"sync"
	"time"

	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/ports"
)

var _ ports.AnalyticsStore = (*Analytics)(nil)

// Analytics counts logins and tracked page visits in process memory.
type Analytics struct {
	mu          sync.Mutex
	logins      int64
	visits      map[domainauth.PageID]int64
	lastUpdated time.Time
	now         func() time.Time
}

// NewAnalytics returns zeroed counters.
func NewAnalytics() *Analytics {
	a := &Analytics{now: time.Now}
	a.resetLocked()
	return a
}

func (a *Analytics) RecordLogin(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logins++
	a.lastUpdated = a.now().UTC()
	return nil
}

// RecordPageVisit ignores pages outside the tracked set.
func (a *Analytics) RecordPageVisit(_ context.Context, page domainauth.PageID) error {
	if !domainauth.IsTracked(page) {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.visits[page]++
	a.lastUpdated = a.now().UTC()
	return nil
}

func (a *Analytics) Snapshot(context.Context) (ports.AnalyticsSnapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	visits := make(map[domainauth.PageID]int64, len(a.visits))
	for k, v := range a.visits {
		visits[k] = v
	}
	return ports.AnalyticsSnapshot{
		SuccessfulLogins: a.logins,
		PageVisits:       visits,
		LastUpdated:      a.lastUpdated,
	}, nil
}

func (a *Analytics) Reset(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
	return nil
}

func (a *Analytics) resetLocked() {
	a.logins = 0
	a.visits = make(map[domainauth.PageID]int64)
	for _, p := range domainauth.TrackedPages() {
		a.visits[p] = 0
	}
	a.lastUpdated = a.now().UTC()
}
