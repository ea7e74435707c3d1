package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/target/content-portal/config"
)

// Infrastructure holds the shared connections opened for the configured backends.
type Infrastructure struct {
	DB          *sql.DB
	RedisClient redis.UniversalClient
}

// Close releases every open connection.
func (i Infrastructure) Close() error {
	var errs []error
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if i.RedisClient != nil {
		if err := i.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ConnectInfrastructure opens only the connections the configured backends need and
// applies migrations when enabled.
func ConnectInfrastructure(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (Infrastructure, error) {
	var infra Infrastructure
	dbCfg := DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}

	if cfg.NeedsPostgres() {
		db, err := ConnectDB(dbCfg)
		if err != nil {
			return Infrastructure{}, fmt.Errorf("connect db: %w", err)
		}
		infra.DB = db
		if cfg.Postgres.RunMigrationsOnStart {
			if err = RunMigrations(ctx, db, logger); err != nil {
				return Infrastructure{}, errors.Join(err, infra.Close())
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
	}

	if cfg.NeedsRedis() {
		client, err := ConnectRedis(dbCfg)
		if err != nil {
			return Infrastructure{}, errors.Join(fmt.Errorf("connect redis: %w", err), infra.Close())
		}
		infra.RedisClient = client
	}
	return infra, nil
}

// Run starts the portal and blocks until a shutdown signal or a server failure.
func Run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("app config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	infra, err := ConnectInfrastructure(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := infra.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close infrastructure failed", "error", cerr)
		}
	}()

	backends, err := BuildBackends(BackendDeps{
		Auth:        cfg.Auth,
		DB:          infra.DB,
		RedisClient: infra.RedisClient,
		KeyPrefix:   cfg.Redis.KeyPrefix,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	obs := BuildObservability(logger, cfg.Observability)
	defer func() {
		if cerr := obs.Close(); cerr != nil {
			logger.WarnContext(ctx, "close statsd failed", "error", cerr)
		}
	}()

	services, err := NewServices(ServiceDeps{
		Auth:      cfg.Auth,
		Backends:  backends,
		Recorders: obs.Recorders,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	if err = SeedAdmin(ctx, services.Auth, cfg.Auth.SeedAdmin, logger); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	server := StartHTTPServer(HTTPServerConfig{
		HTTP:     cfg.HTTP,
		Auth:     cfg.Auth,
		Services: services,
		Metrics:  obs,
		Logger:   logger,
	}, errCh)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		logger.Info("shutting down services...")
		return ShutdownHTTPServer(server, cfg.HTTP.ShutdownTimeout, logger)
	case <-ctx.Done():
		return ShutdownHTTPServer(server, cfg.HTTP.ShutdownTimeout, logger)
	case err = <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}
