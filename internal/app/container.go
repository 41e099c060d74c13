// Package app wires configuration, storage, the settings store and the
// reconciliation engine into a runnable container.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/avelstrom/availsync/internal/availability/application/commands"
	"github.com/avelstrom/availsync/internal/availability/application/subscribers"
	"github.com/avelstrom/availsync/internal/availability/domain"
	"github.com/avelstrom/availsync/internal/availability/infrastructure/persistence"
	"github.com/avelstrom/availsync/internal/availability/infrastructure/settings"
	"github.com/avelstrom/availsync/internal/shared/infrastructure/eventbus"
	"github.com/avelstrom/availsync/internal/shared/infrastructure/migrations"
	"github.com/avelstrom/availsync/pkg/config"
	"github.com/avelstrom/availsync/pkg/observability"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	_ "modernc.org/sqlite"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// DB is the PostgreSQL pool; nil in local mode.
	DB *pgxpool.Pool
	// DBConn is the SQLite connection; nil outside local mode.
	DBConn *sql.DB

	RedisClient *redis.Client

	BookingRepo  domain.BookingRepository
	ProductRepo  domain.ProductRepository
	ResourceRepo domain.ResourceRepository

	Settings       domain.Settings
	SettingsWriter settings.Writer

	Diagnostics       *observability.Diagnostics
	ReconcileHandler  *commands.ReconcileHandler
	BookingSubscriber *subscribers.BookingSubscriber
	EventBus          *eventbus.InProcessEventBus
}

// NewContainer creates and wires all dependencies against PostgreSQL.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	c.DB = pool
	logger.Info("connected to database")

	c.BookingRepo = persistence.NewPostgresBookingRepository(pool)
	c.ProductRepo = persistence.NewPostgresProductRepository(pool)
	c.ResourceRepo = persistence.NewPostgresResourceRepository(pool)

	if err := c.wireSettings(ctx, cfg, logger); err != nil {
		pool.Close()
		return nil, err
	}

	c.wireEngine(cfg, logger)
	return c, nil
}

// NewLocalContainer creates a container against the local SQLite file. The
// settings store is in-memory unless Redis is configured.
func NewLocalContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	dbConn, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := migrations.RunSQLiteMigrations(ctx, dbConn); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	c.DBConn = dbConn
	logger.Info("opened local database", "path", cfg.SQLitePath)

	c.BookingRepo = persistence.NewSQLiteBookingRepository(dbConn)
	c.ProductRepo = persistence.NewSQLiteProductRepository(dbConn)
	c.ResourceRepo = persistence.NewSQLiteResourceRepository(dbConn)

	if err := c.wireSettings(ctx, cfg, logger); err != nil {
		dbConn.Close()
		return nil, err
	}

	c.wireEngine(cfg, logger)
	return c, nil
}

// wireSettings connects the Redis-backed settings store when Redis is
// configured, falling back to the in-memory store otherwise.
func (c *Container) wireSettings(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.RedisURL == "" {
		store := settings.NewMemoryStore()
		c.Settings = store
		c.SettingsWriter = store
		return nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		if !cfg.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		logger.Warn("invalid Redis URL, settings will use in-memory fallback", "error", err)
		store := settings.NewMemoryStore()
		c.Settings = store
		c.SettingsWriter = store
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		if !cfg.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Warn("Redis not available, settings will use in-memory fallback", "error", err)
		store := settings.NewMemoryStore()
		c.Settings = store
		c.SettingsWriter = store
		return nil
	}

	c.RedisClient = client
	store := settings.NewRedisStore(client, settings.Defaults{
		LoggingEnabled: cfg.DiagnosticsDefault,
	}, cfg.SettingsTimeout, logger)
	c.Settings = store
	c.SettingsWriter = store
	logger.Info("connected to Redis")
	return nil
}

// wireEngine builds the diagnostic sink, the reconciliation handler, the
// subscriber and the in-process bus on top of the wired stores.
func (c *Container) wireEngine(cfg *config.Config, logger *slog.Logger) {
	c.Diagnostics = observability.NewDiagnostics(logger, func(ctx context.Context) bool {
		enabled, err := c.Settings.LoggingEnabled(ctx)
		if err != nil {
			return cfg.DiagnosticsDefault
		}
		return enabled
	})

	c.ReconcileHandler = commands.NewReconcileHandler(
		c.BookingRepo,
		c.ProductRepo,
		c.ResourceRepo,
		c.Settings,
		c.Diagnostics,
	)
	c.BookingSubscriber = subscribers.NewBookingSubscriber(c.ReconcileHandler, logger)

	c.EventBus = eventbus.NewInProcessEventBus(logger)
	c.EventBus.RegisterConsumer(c.BookingSubscriber)
}

// Close releases all resources held by the container.
func (c *Container) Close() {
	if c.EventBus != nil {
		c.EventBus.Close()
	}
	if c.RedisClient != nil {
		_ = c.RedisClient.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
	if c.DBConn != nil {
		_ = c.DBConn.Close()
	}
}
