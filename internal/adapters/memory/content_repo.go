package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/target/content-portal/internal/domain/model"
	"github.com/target/content-portal/internal/ports"
)

var _ ports.ContentRepository = (*ContentRepo)(nil)

// ContentRepo stores content items in memory.
type ContentRepo struct {
	mu    sync.RWMutex
	items map[string]model.ContentItem
}

// NewContentRepo returns an empty repository.
func NewContentRepo() *ContentRepo {
	return &ContentRepo{items: make(map[string]model.ContentItem)}
}

func (r *ContentRepo) Create(_ context.Context, item model.ContentItem) (model.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	return item, nil
}

func (r *ContentRepo) List(_ context.Context, onlyEnabled bool) ([]model.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.ContentItem, 0, len(r.items))
	for _, it := range r.items {
		if it.Status.Deleted || (onlyEnabled && !it.Status.Enabled) {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ContentRepo) SetEnabled(_ context.Context, id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok || it.Status.Deleted {
		return model.ErrContentNotFound
	}
	it.Status.Enabled = enabled
	r.items[id] = it
	return nil
}

func (r *ContentRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok || it.Status.Deleted {
		return model.ErrContentNotFound
	}
	it.Status.Deleted = true
	it.Status.Enabled = false
	r.items[id] = it
	return nil
}
