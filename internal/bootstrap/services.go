package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/target/content-portal/config"
	"github.com/target/content-portal/internal/data/cryptoutil"
	"github.com/target/content-portal/internal/ports"
	"github.com/target/content-portal/internal/returnto"
	"github.com/target/content-portal/internal/service"
)

// ServiceContainer holds all initialized portal services.
type ServiceContainer struct {
	Auth      *service.AuthService
	Admin     *service.AdminService
	Analytics *service.AnalyticsService
	Content   *service.ContentService
	Preserver *returnto.Preserver
}

// ServiceDeps contains dependencies for building services.
type ServiceDeps struct {
	Auth      config.AuthConfig
	Backends  Backends
	Recorders []ports.AnalyticsRecorder
	Logger    *slog.Logger
}

// NewServices builds the portal services over the selected backends.
func NewServices(deps ServiceDeps) (ServiceContainer, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hasher, err := cryptoutil.NewBcryptHasher(deps.Auth.BcryptCost)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create hasher: %w", err)
	}

	analytics := service.NewAnalyticsService(service.AnalyticsServiceOptions{
		Store:     deps.Backends.Analytics,
		Recorders: deps.Recorders,
		Logger:    logger,
	})
	return ServiceContainer{
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Directory: deps.Backends.Directory,
			Hasher:    hasher,
			Analytics: analytics,
			Logger:    logger,
		}),
		Admin:     service.NewAdminService(service.AdminServiceOptions{Directory: deps.Backends.Directory, Logger: logger}),
		Analytics: analytics,
		Content:   service.NewContentService(service.ContentServiceOptions{Repo: deps.Backends.Content, Logger: logger}),
		Preserver: returnto.NewPreserver(returnto.PreserverOptions{
			Slot:   deps.Backends.ReturnTo,
			TTL:    deps.Auth.ReturnToTTL,
			Logger: logger,
		}),
	}, nil
}

// SeedAdmin creates the configured bootstrap admin when it does not exist yet.
func SeedAdmin(ctx context.Context, auth *service.AuthService, cfg config.SeedAdminConfig, logger *slog.Logger) error {
	if !cfg.Enabled() {
		return nil
	}
	acc, created, err := auth.SeedAdmin(ctx, service.SeedInput{
		Identity:    cfg.Identity,
		Secret:      cfg.Secret,
		DisplayName: cfg.DisplayName,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "seed admin checked", "identity", acc.Identity, "created", created)
	}
	return nil
}
