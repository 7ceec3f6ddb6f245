package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasker-api/internal/api/middleware"
	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/metrics"
	"github.com/phrazzld/tasker-api/internal/platform/memory"
	"github.com/phrazzld/tasker-api/internal/platform/postgres"
	redisstore "github.com/phrazzld/tasker-api/internal/platform/redis"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
)

// rateLimitCleanupInterval is how often idle per-IP limiters are evicted.
const rateLimitCleanupInterval = time.Minute

// application holds the shared dependencies of the server so they can be
// wired once and closed together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	db    *sql.DB
	redis *goredis.Client

	userStore    store.UserStore
	taskStore    store.TaskStore
	sessionStore store.SessionStore

	tokens      auth.TokenService
	authService *auth.Service
	taskService service.TaskService
	userService service.UserService

	registry *prometheus.Registry
	metrics  metrics.Recorder
	limiter  *middleware.RateLimiter
}

// newApplication builds every store and service on top of an open database.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: prometheus.NewRegistry(),
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.NewCollector(app.registry)

	if cfg.Redis.Addr != "" {
		client, err := redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize session store: %w", err)
		}
		app.redis = client
		app.sessionStore = redisstore.NewSessionStore(client, logger)
		logger.Info("redis session store initialized", slog.String("addr", cfg.Redis.Addr))
	} else {
		app.sessionStore = memory.NewSessionStore()
		logger.Warn("redis.addr is empty; sessions are kept in process memory and lost on restart")
	}

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	if err := app.initServices(); err != nil {
		// The caller owns db; only release what was opened here.
		if app.redis != nil {
			_ = app.redis.Close()
		}
		return nil, err
	}

	if cfg.RateLimit.Enabled {
		app.limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Requests:        cfg.RateLimit.Requests,
			Window:          cfg.RateLimit.Window(),
			CleanupInterval: rateLimitCleanupInterval,
		}, app.metrics)
	}

	logger.Info("application initialized")
	return app, nil
}

// initServices builds the token, auth, task and user services from the
// stores already set on app.
func (app *application) initServices() error {
	cfg := app.config.Auth

	tokens, err := auth.NewTokenService(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	app.tokens = tokens
	app.logger.Info("token service initialized",
		slog.Int("access_token_lifetime_seconds", cfg.AccessTokenLifetimeSeconds),
		slog.Int("refresh_token_lifetime_seconds", cfg.RefreshTokenLifetimeSeconds))

	app.authService, err = auth.NewService(
		app.userStore,
		app.sessionStore,
		app.tokens,
		auth.NewBcryptHasher(cfg.BcryptCost),
		cfg.SessionTTL(),
		app.logger,
		auth.WithEventRecorder(app.metrics),
	)
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}

	app.taskService, err = service.NewTaskService(app.taskStore, app.userStore, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}

	app.userService, err = service.NewUserService(app.userStore, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}
	return nil
}

// Run serves HTTP until ctx is canceled, then releases every resource.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup closes the limiter, the Redis client and the database, in that order.
func (app *application) cleanup() {
	if app.limiter != nil {
		app.limiter.Close()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if app.db != nil {
		closeDatabase(app.db, app.logger)
	}

	app.logger.Info("application shutdown completed")
}
