package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/domain/model"
	"github.com/target/content-portal/internal/ports"
	"github.com/target/content-portal/internal/service"
	"golang.org/x/sync/errgroup"
)

// AdminServiceInterface defines the permission editor operations the handlers need.
type AdminServiceInterface interface {
	SetApproval(ctx context.Context, identity string, approved bool) (service.EditResult, error)
	SetAllowedPages(ctx context.Context, identity string, pages []domainauth.PageID) (service.EditResult, error)
	ListManageableUsers(ctx context.Context) ([]domainauth.Account, error)
	Catalog() []domainauth.PageID
}

// AnalyticsServiceInterface defines the analytics operations exposed to admins.
type AnalyticsServiceInterface interface {
	Snapshot(ctx context.Context) (ports.AnalyticsSnapshot, error)
	Reset(ctx context.Context) error
}

// ContentServiceInterface defines the content management operations.
type ContentServiceInterface interface {
	Add(ctx context.Context, req model.CreateContentRequest) (model.ContentItem, error)
	ListVisible(ctx context.Context) ([]model.ContentItem, error)
	ListAll(ctx context.Context) ([]model.ContentItem, error)
	SetStatus(ctx context.Context, id string, enabled bool) error
	Delete(ctx context.Context, id string) error
}

// AdminHandlers serves the admin console API.
type AdminHandlers struct {
	Admin     AdminServiceInterface
	Analytics AnalyticsServiceInterface
	Content   ContentServiceInterface
	Logger    *slog.Logger
}

func (h *AdminHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type editResponse struct {
	Account domainauth.Account `json:"account"`
	Skipped bool               `json:"skipped"`
}

// ListUsers returns every non-admin account in registration order.
// GET /api/admin/users.
func (h *AdminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Admin.ListManageableUsers(r.Context())
	if err != nil {
		WriteAppError(w, r, h.logger(), err)
		return
	}
	if users == nil {
		users = []domainauth.Account{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

type approvalRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

// SetApproval overwrites a user's approval flag.
// PUT /api/admin/users/{identity}/approval.
func (h *AdminHandlers) SetApproval(w http.ResponseWriter, r *http.Request) {
	identity, ok := pathIdentity(w, r)
	if !ok {
		return
	}
	var req approvalRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := h.Admin.SetApproval(r.Context(), identity, *req.Approved)
	if err != nil {
		WriteAppError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, editResponse{Account: res.Account, Skipped: res.Skipped})
}

type pagesRequest struct {
	Pages []domainauth.PageID `json:"pages"`
}

// SetPages overwrites a user's allowed pages.
// PUT /api/admin/users/{identity}/pages.
func (h *AdminHandlers) SetPages(w http.ResponseWriter, r *http.Request) {
	identity, ok := pathIdentity(w, r)
	if !ok {
		return
	}
	var req pagesRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	res, err := h.Admin.SetAllowedPages(r.Context(), identity, req.Pages)
	if err != nil {
		WriteAppError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, editResponse{Account: res.Account, Skipped: res.Skipped})
}

// Catalog lists the grantable page identifiers.
// GET /api/admin/catalog.
func (h *AdminHandlers) Catalog(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"pages": h.Admin.Catalog()})
}

// AnalyticsSnapshot returns the aggregated counters.
// GET /api/admin/analytics.
func (h *AdminHandlers) AnalyticsSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Analytics.Snapshot(r.Context())
	if err != nil {
		WriteAppError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

// ResetAnalytics zeroes the counters.
// DELETE /api/admin/analytics.
func (h *AdminHandlers) ResetAnalytics(w http.ResponseWriter, r *http.Request) {
	if err := h.Analytics.Reset(r.Context()); err != nil {
		WriteAppError(w, r, h.logger(), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OverviewResponse is the admin dashboard payload.
type OverviewResponse struct {
	Users     []domainauth.Account    `json:"users"`
	Analytics ports.AnalyticsSnapshot `json:"analytics"`
	Content   []model.ContentItem     `json:"content"`
	// Stale names the sections whose source could not be read.
	Stale []string `json:"stale,omitempty"`
}

// Overview loads users, analytics and content concurrently. A directory failure marks
// the users section stale instead of failing the response.
// GET /api/admin/overview.
func (h *AdminHandlers) Overview(w http.ResponseWriter, r *http.Request) {
	var (
		resp     OverviewResponse
		usersErr error
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		resp.Users, usersErr = h.Admin.ListManageableUsers(gctx)
		return nil
	})
	g.Go(func() error {
		snap, err := h.Analytics.Snapshot(gctx)
		resp.Analytics = snap
		return err
	})
	g.Go(func() error {
		items, err := h.Content.ListAll(gctx)
		resp.Content = items
		return err
	})
	if err := g.Wait(); err != nil {
		WriteAppError(w, r, h.logger(), err)
		return
	}
	if usersErr != nil {
		h.logger().WarnContext(r.Context(), "overview users section stale", "error", usersErr)
		resp.Stale = append(resp.Stale, "users")
	}
	if resp.Users == nil {
		resp.Users = []domainauth.Account{}
	}
	if resp.Content == nil {
		resp.Content = []model.ContentItem{}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// ListContent returns all non-deleted items including disabled ones.
// GET /api/admin/content.
func (h *AdminHandlers) ListContent(w http.ResponseWriter, r *http.Request) {
	items, err := h.Content.ListAll(r.Context())
	if err != nil {
		WriteAppError(w, r, h.logger(), err)
		return
	}
	if items == nil {
		items = []model.ContentItem{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// CreateContent adds an item attributed to the calling admin.
// POST /api/admin/content.
func (h *AdminHandlers) CreateContent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateContentRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	if sess, ok := SessionFromContext(r.Context()); ok {
		req.CreatedBy = sess.Store.Get().Identity
	}
	item, err := h.Content.Add(r.Context(), req)
	if err != nil {
		WriteAppError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusCreated, item)
}

type contentStatusRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// SetContentStatus enables or disables an item.
// PUT /api/admin/content/{id}/status.
func (h *AdminHandlers) SetContentStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req contentStatusRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	if err := h.Content.SetStatus(r.Context(), id, *req.Enabled); err != nil {
		WriteAppError(w, r, h.logger(), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteContent soft-deletes an item.
// DELETE /api/admin/content/{id}.
func (h *AdminHandlers) DeleteContent(w http.ResponseWriter, r *http.Request) {
	if err := h.Content.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteAppError(w, r, h.logger(), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathIdentity(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity := strings.TrimSpace(r.PathValue("identity"))
	if identity == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "validation",
			"message": "identity is required",
		})
		return "", false
	}
	return identity, true
}
