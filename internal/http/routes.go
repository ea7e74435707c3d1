package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/guard"
	"github.com/target/content-portal/internal/observability/metrics"
	"github.com/target/content-portal/internal/ports"
	"github.com/target/content-portal/internal/returnto"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth      AuthServiceInterface
	Admin     AdminServiceInterface
	Analytics AnalyticsServiceInterface
	Content   ContentServiceInterface
	Preserver *returnto.Preserver
	Sessions  *SessionManager
	// Visits receives page visits from rendered tracked routes (optional).
	Visits ports.AnalyticsRecorder
	// Revalidator re-checks sessions against the directory on navigation (optional).
	Revalidator Revalidator
	Observer    metrics.Observer
	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer
	// LoginRateLimit caps POST /login and /register per client IP per minute; 0 disables.
	LoginRateLimit int
	Logger         *slog.Logger
}

// sectionRoutes maps browser paths to their guarded page.
//
//nolint:gochecknoglobals // static read-only lookup
var sectionRoutes = []struct {
	Path string
	Page domainauth.PageID
}{
	{"/videos", domainauth.PageVideos},
	{"/portfolio", domainauth.PagePortfolio},
	{"/intelus", domainauth.PageIntelus},
	{"/live", domainauth.PageLive},
	{"/my-videos", domainauth.PageMyVideos},
	{"/my-files", domainauth.PageMyFiles},
}

// NewRouter creates and configures the portal router. Every request carries a session.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sessions := services.Sessions
	if sessions == nil {
		sessions = NewSessionManager(SessionManagerOptions{})
	}
	mux := http.NewServeMux()

	guards := NewGuards(GuardsOptions{
		Preserver:   services.Preserver,
		Visits:      services.Visits,
		Revalidator: services.Revalidator,
		Observer:    services.Observer,
		Logger:      logger,
	})
	authHandlers := &AuthHandlers{
		Svc:       services.Auth,
		Preserver: services.Preserver,
		Sessions:  sessions,
		Observer:  services.Observer,
		Logger:    logger,
	}
	pages := &PageHandlers{Content: services.Content, Logger: logger}
	admin := &AdminHandlers{
		Admin:     services.Admin,
		Analytics: services.Analytics,
		Content:   services.Content,
		Logger:    logger,
	}

	registerAuthRoutes(mux, authHandlers, RateLimit(services.LoginRateLimit, time.Minute))
	registerPageRoutes(mux, guards, pages)
	registerAPIRoutes(mux, guards, admin, &ContentHandlers{Content: services.Content, Logger: logger})

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	if services.Gatherer != nil {
		mux.Handle("GET /metrics", metricsHandler(services.Gatherer))
	}

	return Chain(mux, Recover(logger), Logging(logger), sessions.Middleware)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, limit func(http.Handler) http.Handler) {
	mux.HandleFunc("GET "+returnto.LoginPath, h.LoginPage)
	mux.HandleFunc("GET "+returnto.RegisterPath, h.RegisterPage)
	mux.Handle("POST "+returnto.LoginPath, limit(http.HandlerFunc(h.Login)))
	mux.Handle("POST "+returnto.RegisterPath, limit(http.HandlerFunc(h.Register)))
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

func registerPageRoutes(mux *http.ServeMux, g *Guards, pages *PageHandlers) {
	home := guard.Route{Kind: guard.KindSection, Page: domainauth.PageHome}
	mux.Handle("GET /{$}", g.Page(home)(pages.Render(domainauth.PageHome)))
	for _, sr := range sectionRoutes {
		route := guard.Route{Kind: guard.KindSection, Page: sr.Page}
		mux.Handle("GET "+sr.Path, g.Page(route)(pages.Render(sr.Page)))
	}
	adminRoute := guard.Route{Kind: guard.KindAdmin, Page: domainauth.PageAdmin}
	mux.Handle("GET /admin", g.Page(adminRoute)(pages.Render(domainauth.PageAdmin)))
}

func registerAPIRoutes(mux *http.ServeMux, g *Guards, admin *AdminHandlers, content *ContentHandlers) {
	mux.Handle("GET /api/content", g.RequireAuth(http.HandlerFunc(content.List)))

	adminOnly := func(fn http.HandlerFunc) http.Handler { return g.RequireAdmin(fn) }
	mux.Handle("GET /api/admin/users", adminOnly(admin.ListUsers))
	mux.Handle("PUT /api/admin/users/{identity}/approval", adminOnly(admin.SetApproval))
	mux.Handle("PUT /api/admin/users/{identity}/pages", adminOnly(admin.SetPages))
	mux.Handle("GET /api/admin/catalog", adminOnly(admin.Catalog))
	mux.Handle("GET /api/admin/analytics", adminOnly(admin.AnalyticsSnapshot))
	mux.Handle("DELETE /api/admin/analytics", adminOnly(admin.ResetAnalytics))
	mux.Handle("GET /api/admin/overview", adminOnly(admin.Overview))
	mux.Handle("GET /api/admin/content", adminOnly(admin.ListContent))
	mux.Handle("POST /api/admin/content", adminOnly(admin.CreateContent))
	mux.Handle("PUT /api/admin/content/{id}/status", adminOnly(admin.SetContentStatus))
	mux.Handle("DELETE /api/admin/content/{id}", adminOnly(admin.DeleteContent))
}
