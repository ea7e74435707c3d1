package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/ports"
)

// AnalyticsServiceOptions groups dependencies for AnalyticsService.
type AnalyticsServiceOptions struct {
	// Store holds the counters shown on the admin console.
	Store ports.AnalyticsStore
	// Recorders receive the same events, e.g. StatsD or Prometheus emitters.
	Recorders []ports.AnalyticsRecorder
	Logger    *slog.Logger
}

// AnalyticsService fans login and page-visit events out to every recorder.
type AnalyticsService struct {
	store     ports.AnalyticsStore
	recorders []ports.AnalyticsRecorder
	logger    *slog.Logger
}

var _ ports.AnalyticsRecorder = (*AnalyticsService)(nil)

// NewAnalyticsService constructs a new AnalyticsService. Nil recorders are dropped.
func NewAnalyticsService(opts AnalyticsServiceOptions) *AnalyticsService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorders := make([]ports.AnalyticsRecorder, 0, len(opts.Recorders)+1)
	if opts.Store != nil {
		recorders = append(recorders, opts.Store)
	}
	for _, r := range opts.Recorders {
		if r != nil {
			recorders = append(recorders, r)
		}
	}
	return &AnalyticsService{
		store:     opts.Store,
		recorders: recorders,
		logger:    logger.With("component", "analytics_service"),
	}
}

// RecordLogin counts a successful login on every recorder, returning the joined failures.
func (s *AnalyticsService) RecordLogin(ctx context.Context) error {
	return s.fanOut(ctx, "login", func(r ports.AnalyticsRecorder) error { return r.RecordLogin(ctx) })
}

// RecordPageVisit counts a visit to a tracked page. Untracked pages are ignored.
func (s *AnalyticsService) RecordPageVisit(ctx context.Context, page domainauth.PageID) error {
	if !domainauth.IsTracked(page) {
		return nil
	}
	return s.fanOut(ctx, "page_visit", func(r ports.AnalyticsRecorder) error { return r.RecordPageVisit(ctx, page) })
}

// Snapshot reads the primary counter store.
func (s *AnalyticsService) Snapshot(ctx context.Context) (ports.AnalyticsSnapshot, error) {
	if s.store == nil {
		return ports.AnalyticsSnapshot{}, errors.New("analytics store not configured")
	}
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return ports.AnalyticsSnapshot{}, fmt.Errorf("analytics snapshot: %w", err)
	}
	return snap, nil
}

// Reset zeroes the primary counter store.
func (s *AnalyticsService) Reset(ctx context.Context) error {
	if s.store == nil {
		return errors.New("analytics store not configured")
	}
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("analytics reset: %w", err)
	}
	s.logger.InfoContext(ctx, "analytics reset")
	return nil
}

func (s *AnalyticsService) fanOut(ctx context.Context, event string, fn func(ports.AnalyticsRecorder) error) error {
	var errs []error
	for _, r := range s.recorders {
		if err := fn(r); err != nil {
			s.logger.WarnContext(ctx, "analytics recorder failed", "event", event, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
