package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/target/content-portal/config"
	"github.com/target/content-portal/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

// openFn builds the services a command works against and returns a release func.
type openFn func(ctx context.Context) (bootstrap.ServiceContainer, func(), error)

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
	open   openFn
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = 30 * time.Second
)

func main() {
	logger := bootstrap.InitLogger(slog.LevelInfo, false)

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	logger = bootstrap.InitLogger(cfg.Observability.SlogLevel(), cfg.IsDev)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
	}
	cmdCtx.open = cmdCtx.openServices
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations and report applied versions",
			run:         runMigrations,
		},
		"seed-admin": {
			name:        "seed-admin",
			description: "Create the bootstrap admin account if it does not exist",
			run:         runSeedAdmin,
		},
		"list-users": {
			name:        "list-users",
			description: "List non-admin accounts, optionally filtered with --query",
			run:         runListUsers,
		},
		"approve": {
			name:        "approve",
			description: "Approve or revoke a user account",
			run:         runApprove,
		},
		"grant-pages": {
			name:        "grant-pages",
			description: "Replace the pages a user may open",
			run:         runGrantPages,
		},
		"analytics": {
			name:        "analytics",
			description: "Print or reset login and page visit counters",
			run:         runAnalytics,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: portal-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-14s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

// openServices connects the configured backends the same way the server does.
func (c *commandContext) openServices(ctx context.Context) (bootstrap.ServiceContainer, func(), error) {
	infra, err := bootstrap.ConnectInfrastructure(ctx, &c.Config, c.Logger)
	if err != nil {
		return bootstrap.ServiceContainer{}, nil, err
	}
	release := func() {
		if cerr := infra.Close(); cerr != nil {
			c.Logger.Warn("close infrastructure failed", "error", cerr)
		}
	}
	backends, err := bootstrap.BuildBackends(bootstrap.BackendDeps{
		Auth:        c.Config.Auth,
		DB:          infra.DB,
		RedisClient: infra.RedisClient,
		KeyPrefix:   c.Config.Redis.KeyPrefix,
		Logger:      c.Logger,
	})
	if err != nil {
		release()
		return bootstrap.ServiceContainer{}, nil, err
	}
	services, err := bootstrap.NewServices(bootstrap.ServiceDeps{
		Auth:     c.Config.Auth,
		Backends: backends,
		Logger:   c.Logger,
	})
	if err != nil {
		release()
		return bootstrap.ServiceContainer{}, nil, err
	}
	return services, release, nil
}

// withServices runs fn against freshly opened services under a command timeout.
func (c *commandContext) withServices(fn func(ctx context.Context, svc bootstrap.ServiceContainer) error) error {
	ctx, cancel := context.WithTimeout(c.Ctx, defaultCommandTimeout)
	defer cancel()

	svc, release, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx, svc)
}

type migrateOptions struct {
	Timeout time.Duration
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete",
	)
	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	cmdCtx.Logger.Info("running database migrations")
	if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
		return fmt.Errorf("run migrations: %w", migrateErr)
	}

	applied, err := bootstrap.AppliedMigrations(ctx, db)
	if err != nil {
		return err
	}
	for _, v := range applied {
		if err = writef(cmdCtx.Out, "applied %s\n", v); err != nil {
			return err
		}
	}
	cmdCtx.Logger.Info("migrations completed successfully", "applied", len(applied))
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
