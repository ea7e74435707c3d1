// Package redis provides Redis-based adapters for the content portal.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/content-portal/internal/ports"
)

var _ ports.ReturnToSlot = (*ReturnToSlot)(nil)

// DefaultReturnToPrefix namespaces return-to keys.
const DefaultReturnToPrefix = "returnto:"

// ReturnToSlot stores one pending post-login destination per scope with Redis TTLs.
type ReturnToSlot struct {
	client redis.UniversalClient
	prefix string
}

// NewReturnToSlot creates a Redis-backed slot store.
func NewReturnToSlot(client redis.UniversalClient) *ReturnToSlot {
	return NewReturnToSlotWithPrefix(client, DefaultReturnToPrefix)
}

// NewReturnToSlotWithPrefix creates a slot store with a custom key prefix.
func NewReturnToSlotWithPrefix(client redis.UniversalClient, prefix string) *ReturnToSlot {
	return &ReturnToSlot{client: client, prefix: prefix}
}

func (s *ReturnToSlot) Save(ctx context.Context, scope, destination string, ttl time.Duration) error {
	if scope == "" {
		return errors.New("return-to scope cannot be empty")
	}
	if ttl <= 0 {
		return errors.New("return-to ttl must be positive")
	}
	if err := s.client.Set(ctx, s.prefix+scope, destination, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *ReturnToSlot) Load(ctx context.Context, scope string) (string, bool, error) {
	if scope == "" {
		return "", false, nil
	}
	v, err := s.client.Get(ctx, s.prefix+scope).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

func (s *ReturnToSlot) Clear(ctx context.Context, scope string) error {
	if scope == "" {
		return nil // Nothing to clear
	}
	if err := s.client.Del(ctx, s.prefix+scope).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
