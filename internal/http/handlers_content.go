package httpx

import (
	"log/slog"
	"net/http"

	"github.com/target/content-portal/internal/domain/model"
)

// ContentHandlers serves content to authenticated members.
type ContentHandlers struct {
	Content ContentLister
	Logger  *slog.Logger
}

// List returns enabled, non-deleted items newest first.
// GET /api/content.
func (h *ContentHandlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Content.ListVisible(r.Context())
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	if items == nil {
		items = []model.ContentItem{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}
