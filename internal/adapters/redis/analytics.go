package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/ports"
)

var _ ports.AnalyticsStore = (*AnalyticsStore)(nil)

// DefaultAnalyticsKey is the hash holding portal counters.
const DefaultAnalyticsKey = "analytics:counters"

const (
	fieldLogins      = "successful_logins"
	fieldLastUpdated = "last_updated"
	visitFieldPrefix = "visit:"
)

// AnalyticsStore keeps login and page-visit counters in a single Redis hash so
// every portal replica shares them.
type AnalyticsStore struct {
	client redis.UniversalClient
	key    string
	now    func() time.Time
}

// NewAnalyticsStore creates a Redis-backed analytics store.
func NewAnalyticsStore(client redis.UniversalClient) *AnalyticsStore {
	return NewAnalyticsStoreWithKey(client, DefaultAnalyticsKey)
}

// NewAnalyticsStoreWithKey uses a custom hash key.
func NewAnalyticsStoreWithKey(client redis.UniversalClient, key string) *AnalyticsStore {
	return &AnalyticsStore{client: client, key: key, now: time.Now}
}

func (s *AnalyticsStore) RecordLogin(ctx context.Context) error {
	return s.incr(ctx, fieldLogins)
}

// RecordPageVisit ignores pages outside the tracked set.
func (s *AnalyticsStore) RecordPageVisit(ctx context.Context, page domainauth.PageID) error {
	if !domainauth.IsTracked(page) {
		return nil
	}
	return s.incr(ctx, visitFieldPrefix+string(page))
}

func (s *AnalyticsStore) incr(ctx context.Context, field string) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HIncrBy(ctx, s.key, field, 1)
		p.HSet(ctx, s.key, fieldLastUpdated, s.now().UTC().UnixMilli())
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hincrby %s: %w", field, err)
	}
	return nil
}

func (s *AnalyticsStore) Snapshot(ctx context.Context) (ports.AnalyticsSnapshot, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return ports.AnalyticsSnapshot{}, fmt.Errorf("redis hgetall: %w", err)
	}
	snap := ports.AnalyticsSnapshot{PageVisits: make(map[domainauth.PageID]int64)}
	for _, p := range domainauth.TrackedPages() {
		snap.PageVisits[p] = 0
	}
	for field, v := range raw {
		n, parseErr := strconv.ParseInt(v, 10, 64)
		if parseErr != nil {
			return ports.AnalyticsSnapshot{}, fmt.Errorf("parse analytics field %s: %w", field, parseErr)
		}
		switch {
		case field == fieldLogins:
			snap.SuccessfulLogins = n
		case field == fieldLastUpdated:
			snap.LastUpdated = time.UnixMilli(n).UTC()
		case strings.HasPrefix(field, visitFieldPrefix):
			page := domainauth.PageID(strings.TrimPrefix(field, visitFieldPrefix))
			if domainauth.IsTracked(page) {
				snap.PageVisits[page] = n
			}
		}
	}
	return snap, nil
}

func (s *AnalyticsStore) Reset(ctx context.Context) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.key)
		p.HSet(ctx, s.key, fieldLastUpdated, s.now().UTC().UnixMilli())
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis reset analytics: %w", err)
	}
	return nil
}
