// Package main is the entry point of the tasker API server. It loads
// configuration, connects to Postgres and Redis, applies migrations and
// serves the HTTP API until it receives SIGINT or SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		fmt.Sprintf("run a migration command %v and exit", postgres.MigrationCommands))
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrateCmd); err != nil {
		log.Printf("tasker-api: %v", err)
		stop()
		os.Exit(1)
	}
}

// run wires the application together and blocks until ctx is canceled or
// the server fails.
func run(ctx context.Context, migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("environment", cfg.Server.Environment),
		slog.Bool("redis_configured", cfg.Redis.Addr != ""))

	db, err := setupDatabase(ctx, cfg.Database, l)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer closeDatabase(db, l)
		return postgres.Migrate(ctx, db, migrateCmd, l)
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db, "up", l); err != nil {
			closeDatabase(db, l)
			return err
		}
	}

	app, err := newApplication(ctx, cfg, l, db)
	if err != nil {
		closeDatabase(db, l)
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
