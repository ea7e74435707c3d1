package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/target/content-portal/config"
	"github.com/target/content-portal/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger(slog.LevelInfo, false)
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logger = bootstrap.InitLogger(cfg.Observability.SlogLevel(), cfg.IsDev)

	logStartupInfo(ctx, logger, &cfg)
	return bootstrap.Run(ctx, &cfg, logger)
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting content portal",
		"addr", cfg.HTTP.Addr,
		"directory_backend", cfg.Auth.DirectoryBackend,
		"return_to_backend", cfg.Auth.ReturnToBackend,
		"analytics_backend", cfg.Auth.AnalyticsBackend,
		"dev", cfg.IsDev)
}
