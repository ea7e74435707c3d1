package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/content-portal/config"
	httpx "github.com/target/content-portal/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	HTTP     config.HTTPConfig
	Auth     config.AuthConfig
	Services ServiceContainer
	Metrics  ObservabilityContainer
	Logger   *slog.Logger
}

// BuildHTTPHandler assembles the portal router from the service container.
func BuildHTTPHandler(cfg HTTPServerConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	services := httpx.RouterServices{
		Auth:      cfg.Services.Auth,
		Admin:     cfg.Services.Admin,
		Analytics: cfg.Services.Analytics,
		Content:   cfg.Services.Content,
		Preserver: cfg.Services.Preserver,
		Sessions: httpx.NewSessionManager(httpx.SessionManagerOptions{
			CookieDomain: cfg.HTTP.CookieDomain,
		}),
		Visits:         cfg.Services.Analytics,
		Observer:       cfg.Metrics.Observer,
		Gatherer:       cfg.Metrics.Gatherer(),
		LoginRateLimit: cfg.Auth.LoginRateLimit,
		Logger:         logger,
	}
	if cfg.Auth.RevalidateSessions {
		services.Revalidator = cfg.Services.Auth
	}
	return httpx.NewRouter(services)
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown; serve errors are sent to errCh.
func StartHTTPServer(cfg HTTPServerConfig, errCh chan<- error) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := cfg.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           BuildHTTPHandler(cfg),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			errCh <- err
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server within timeout.
func ShutdownHTTPServer(server *http.Server, timeout time.Duration, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}
	return nil
}
