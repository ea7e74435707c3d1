package ports

import (
	"context"
	"time"
)

// ReturnToSlot persists one pending post-login destination per browser session scope.
type ReturnToSlot interface {
	Save(ctx context.Context, scope, destination string, ttl time.Duration) error
	// Load returns the stored destination and whether one was present.
	Load(ctx context.Context, scope string) (string, bool, error)
	Clear(ctx context.Context, scope string) error
}
