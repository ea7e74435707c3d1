package ports

import (
	"context"
	"time"

	domainauth "github.com/target/content-portal/internal/domain/auth"
)

// AnalyticsRecorder receives login and page-visit events.
type AnalyticsRecorder interface {
	RecordLogin(ctx context.Context) error
	RecordPageVisit(ctx context.Context, page domainauth.PageID) error
}

// AnalyticsSnapshot is the aggregated view shown on the admin console.
type AnalyticsSnapshot struct {
	SuccessfulLogins int64                       `json:"successful_logins"`
	PageVisits       map[domainauth.PageID]int64 `json:"page_visits"`
	LastUpdated      time.Time                   `json:"last_updated"`
}

// AnalyticsStore is a recorder that can also report and reset its counters.
type AnalyticsStore interface {
	AnalyticsRecorder
	Snapshot(ctx context.Context) (AnalyticsSnapshot, error)
	Reset(ctx context.Context) error
}
