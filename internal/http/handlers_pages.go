package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/domain/model"
	"github.com/target/content-portal/internal/guard"
)

// ContentLister lists the content visible to portal members.
type ContentLister interface {
	ListVisible(ctx context.Context) ([]model.ContentItem, error)
}

// pageContentTypes selects which content each section displays. Pages not listed
// are static.
//
//nolint:gochecknoglobals // static read-only lookup
var pageContentTypes = map[domainauth.PageID][]model.ContentType{
	domainauth.PageIntelus:  {model.ContentTypeVideoLink, model.ContentTypeVideoFile, model.ContentTypeDocument},
	domainauth.PageLive:     {model.ContentTypeLiveEmbed},
	domainauth.PageMyFiles:  {model.ContentTypeDocument},
	domainauth.PageMyVideos: {model.ContentTypeVideoLink, model.ContentTypeVideoFile},
}

// PageView is the JSON rendering of a guarded portal page.
type PageView struct {
	Page         domainauth.PageID             `json:"page"`
	State        domainauth.AuthorizationState `json:"state"`
	AccessDenied bool                          `json:"accessDenied,omitempty"`
	Reason       string                        `json:"reason,omitempty"`
	Content      []model.ContentItem           `json:"content,omitempty"`
}

// PageHandlers renders portal pages once their guards have passed.
type PageHandlers struct {
	Content ContentLister
	Logger  *slog.Logger
}

// Render returns a handler for page. A request refused by its guard gets the
// page view with the refusal and no content, answered 403.
func (h *PageHandlers) Render(page domainauth.PageID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			writeNoSession(w)
			return
		}
		view := PageView{Page: page, State: sess.Store.Get()}
		if reason, denied := denialFromContext(r.Context()); denied {
			view.AccessDenied = true
			view.Reason = reason
			if view.Reason == "" {
				view.Reason = domainauth.MsgAccessDenied
			}
			WriteJSON(w, http.StatusForbidden, view)
			return
		}
		q := r.URL.Query()
		if q.Get(guard.ParamAccessDenied) == "true" {
			view.AccessDenied = true
			view.Reason = q.Get(guard.ParamReason)
			if view.Reason == "" {
				view.Reason = domainauth.MsgAccessDenied
			}
		}

		if types, dynamic := pageContentTypes[page]; dynamic && h.Content != nil {
			items, err := h.Content.ListVisible(r.Context())
			if err != nil {
				WriteAppError(w, r, h.Logger, err)
				return
			}
			view.Content = filterContent(items, types)
		}
		WriteJSON(w, http.StatusOK, view)
	})
}

func filterContent(items []model.ContentItem, types []model.ContentType) []model.ContentItem {
	out := make([]model.ContentItem, 0, len(items))
	for _, it := range items {
		if slices.Contains(types, it.ContentType) {
			out = append(out, it)
		}
	}
	return out
}
