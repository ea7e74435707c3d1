package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/guard"
	"github.com/target/content-portal/internal/observability/metrics"
	"github.com/target/content-portal/internal/ports"
	"github.com/target/content-portal/internal/returnto"
	"github.com/target/content-portal/internal/service"
)

// Revalidator re-checks an authenticated session against the User Directory.
type Revalidator interface {
	Revalidate(ctx context.Context, store service.StateStore) (bool, error)
}

// GuardsOptions groups dependencies for Guards.
type GuardsOptions struct {
	Preserver *returnto.Preserver
	// Visits receives tracked page renders (optional).
	Visits ports.AnalyticsRecorder
	// Revalidator, when set, runs before every guarded navigation.
	Revalidator Revalidator
	Observer    metrics.Observer
	Logger      *slog.Logger
}

// Guards executes route guard decisions over HTTP.
type Guards struct {
	preserver   *returnto.Preserver
	visits      ports.AnalyticsRecorder
	revalidator Revalidator
	observer    metrics.Observer
	logger      *slog.Logger
}

// NewGuards constructs Guards.
func NewGuards(opts GuardsOptions) *Guards {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := opts.Observer
	if observer == nil {
		observer = metrics.Observers(nil)
	}
	return &Guards{
		preserver:   opts.Preserver,
		visits:      opts.Visits,
		revalidator: opts.Revalidator,
		observer:    observer,
		logger:      logger.With("component", "guards"),
	}
}

// Page returns a browser middleware for route. Unauthenticated visitors are sent to
// login with their destination preserved. Denied visitors are sent home, or served
// the refusal when home is the page they were denied.
func (g *Guards) Page(route guard.Route) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := g.session(w, r)
			if !ok {
				return
			}
			q, err := returnto.ParseQuery(r.URL.RawQuery)
			if err != nil {
				g.logger.DebugContext(r.Context(), "dropped malformed query parameters",
					"path", r.URL.Path, "kept", len(q), "error", err)
			}
			nav := guard.Navigation{Path: r.URL.Path, Query: q}

			d := guard.Evaluate(sess.Store.Get(), route, nav)
			g.observer.ObserveGuardDecision(d.Outcome.String())

			switch d.Outcome {
			case guard.RedirectLogin:
				// The destination also travels in the URL, so a slot failure is logged, not fatal.
				loginNav, _ := g.preserver.BuildLoginNavigation(r.Context(), sess.ID, d.From.Path, d.From.Query)
				http.Redirect(w, r, loginNav.URL(), http.StatusSeeOther)
			case guard.RedirectHome, guard.RedirectDenied:
				target := returnto.Navigation{Target: d.Target, Search: d.Search}
				http.Redirect(w, r, target.URL(), http.StatusSeeOther)
			case guard.Denied:
				reason, _ := d.Search.Get(guard.ParamReason)
				next.ServeHTTP(w, r.WithContext(withDenial(r.Context(), reason)))
			default:
				g.trackVisit(r.Context(), d.TrackPage)
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequireAuth answers 401 JSON for API requests without an authenticated session.
func (g *Guards) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := g.session(w, r)
		if !ok {
			return
		}
		if !sess.Store.Get().IsAuthenticated() {
			WriteError(w, ErrorParams{
				Code:    http.StatusUnauthorized,
				ErrCode: "authentication_required",
				Err:     errors.New("authentication required"),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin answers 401 or 403 JSON unless the session belongs to an admin.
func (g *Guards) RequireAdmin(next http.Handler) http.Handler {
	return g.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		if !sess.Store.Get().IsAdmin() {
			WriteError(w, ErrorParams{
				Code:    http.StatusForbidden,
				ErrCode: "insufficient_permissions",
				Err:     errors.New("insufficient permissions"),
			})
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// session returns the request session after optional revalidation.
func (g *Guards) session(w http.ResponseWriter, r *http.Request) (Session, bool) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		writeNoSession(w)
		return Session{}, false
	}
	if g.revalidator != nil {
		if _, err := g.revalidator.Revalidate(r.Context(), sess.Store); err != nil {
			g.logger.WarnContext(r.Context(), "session revalidation skipped", "error", err)
		}
	}
	return sess, true
}

func (g *Guards) trackVisit(ctx context.Context, page domainauth.PageID) {
	if page == "" || g.visits == nil {
		return
	}
	if err := g.visits.RecordPageVisit(ctx, page); err != nil {
		g.logger.WarnContext(ctx, "record page visit failed", "page", page, "error", err)
	}
}
