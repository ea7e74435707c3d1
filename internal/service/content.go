package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/target/content-portal/internal/domain/model"
	"github.com/target/content-portal/internal/ports"
)

// ContentServiceOptions groups dependencies for ContentService.
type ContentServiceOptions struct {
	Repo   ports.ContentRepository
	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() string
}

// ContentService manages the portal content catalog.
type ContentService struct {
	repo   ports.ContentRepository
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewContentService constructs a new ContentService.
func NewContentService(opts ContentServiceOptions) *ContentService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &ContentService{repo: opts.Repo, logger: logger.With("component", "content_service"), now: now, newID: newID}
}

// Add validates and stores a new item. Items are enabled unless the request says otherwise.
func (s *ContentService) Add(ctx context.Context, req model.CreateContentRequest) (model.ContentItem, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.ContentItem{}, fmt.Errorf("%w: %w", model.ErrInvalidContent, err)
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	item := model.ContentItem{
		ID:          s.newID(),
		Title:       req.Title,
		Description: req.Description,
		ContentType: req.ContentType,
		URL:         req.URL,
		Status:      model.ContentStatus{Enabled: enabled},
		CreatedBy:   req.CreatedBy,
		CreatedAt:   s.now().UTC(),
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return model.ContentItem{}, fmt.Errorf("create content: %w", err)
	}
	s.logger.InfoContext(ctx, "content added", "id", created.ID, "type", created.ContentType)
	return created, nil
}

// ListVisible returns enabled items, newest first.
func (s *ContentService) ListVisible(ctx context.Context) ([]model.ContentItem, error) {
	items, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return items, nil
}

// ListAll returns every non-deleted item for the admin console.
func (s *ContentService) ListAll(ctx context.Context) ([]model.ContentItem, error) {
	items, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return items, nil
}

// SetStatus enables or disables an item.
func (s *ContentService) SetStatus(ctx context.Context, id string, enabled bool) error {
	if err := s.repo.SetEnabled(ctx, id, enabled); err != nil {
		return fmt.Errorf("set content status: %w", err)
	}
	return nil
}

// Delete soft-deletes an item.
func (s *ContentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	s.logger.InfoContext(ctx, "content deleted", "id", id)
	return nil
}
