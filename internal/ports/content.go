package ports

import (
	"context"

	"github.com/target/content-portal/internal/domain/model"
)

// ContentRepository persists portal content items.
type ContentRepository interface {
	Create(ctx context.Context, item model.ContentItem) (model.ContentItem, error)
	// List returns non-deleted items newest first; onlyEnabled restricts to enabled items.
	List(ctx context.Context, onlyEnabled bool) ([]model.ContentItem, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
	SoftDelete(ctx context.Context, id string) error
}
