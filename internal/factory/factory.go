package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/teamboard/internal/broadcast"
	"github.com/mcoot/teamboard/internal/config"
	"github.com/mcoot/teamboard/internal/dependencies/clock"
	"github.com/mcoot/teamboard/internal/dependencies/ids"
	"github.com/mcoot/teamboard/internal/services/auth"
	"github.com/mcoot/teamboard/internal/services/gate"
	"github.com/mcoot/teamboard/internal/services/scoreboard"
	"github.com/mcoot/teamboard/internal/storage"
	"github.com/mcoot/teamboard/internal/storage/memory"
	"github.com/mcoot/teamboard/internal/storage/postgres"
	redisstorage "github.com/mcoot/teamboard/internal/storage/redis"
	"github.com/mcoot/teamboard/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock
	IDs   ids.Generator

	// Services
	AuthService *auth.Service
	Gate        *gate.Gate
	Scoreboard  *scoreboard.Controller

	// Broadcast
	Coordinator *broadcast.Coordinator
	// Relay is nil unless cross-process fan-out is enabled
	Relay *broadcast.Relay

	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service. Secret is required.
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend (see config.Storage*)
	// If empty, defaults to memory
	StorageType string
	// RedisConfig holds Redis connection settings (required for redis storage or the relay)
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required for sqlite storage)
	SQLitePath string
	// PostgresConfig holds PostgreSQL settings (required for postgres storage)
	PostgresConfig *postgres.Config
	// RelayEnabled fans broadcasts out through Redis pub/sub
	RelayEnabled bool
}

// ConfigFromEnv maps process configuration onto a factory Config
func ConfigFromEnv(c config.Config, logger *slog.Logger) Config {
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = c.RedisURL

	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = c.DatabaseURL

	authCfg := auth.DefaultConfig()
	authCfg.Secret = []byte(c.JWTSecret)
	authCfg.TokenTTL = c.TokenTTL

	return Config{
		AuthConfig:     authCfg,
		Logger:         logger,
		StorageType:    c.StorageType,
		RedisConfig:    &redisCfg,
		SQLitePath:     c.SQLitePath,
		PostgresConfig: &pgCfg,
		RelayEnabled:   c.RelayEnabled,
	}
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app, err := newWithDependencies(store, clock.New(), ids.New(), cfg.AuthConfig, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	app.closers = append(app.closers, store.Close)

	if cfg.RelayEnabled {
		if err := app.startRelay(ctx, cfg, store, logger); err != nil {
			_ = app.Close()
			return nil, err
		}
	}

	logger.Info("application wired",
		slog.String("storage", storageTypeOrDefault(cfg.StorageType)),
		slog.Bool("relay", cfg.RelayEnabled))
	return app, nil
}

func storageTypeOrDefault(t string) string {
	if t == "" {
		return config.StorageMemory
	}
	return t
}

// newStorage creates storage based on type
func newStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	switch storageTypeOrDefault(cfg.StorageType) {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case config.StorageSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.Open(cfg.SQLitePath)
	case config.StoragePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		return postgres.Open(ctx, *cfg.PostgresConfig)
	default:
		return nil, fmt.Errorf("invalid StorageType %q", cfg.StorageType)
	}
}

// startRelay connects the coordinator to Redis pub/sub, sharing the storage client when possible
func (a *App) startRelay(ctx context.Context, cfg Config, store storage.Storage, logger *slog.Logger) error {
	var client *redis.Client
	if rs, ok := store.(*redisstorage.Storage); ok {
		client = rs.Client()
	} else {
		if cfg.RedisConfig == nil {
			return errors.New("RedisConfig required when RelayEnabled")
		}
		opts, err := redis.ParseURL(cfg.RedisConfig.URL)
		if err != nil {
			return fmt.Errorf("relay redis url: %w", err)
		}
		client = redis.NewClient(opts)
		a.closers = append(a.closers, client.Close)
	}

	relay := broadcast.NewRelay(client, a.Coordinator, logger)
	if err := relay.Start(ctx); err != nil {
		return fmt.Errorf("start relay: %w", err)
	}
	// Closed before the client it reads from
	a.closers = append(a.closers, relay.Close)

	a.Relay = relay
	a.Scoreboard.SetPublisher(relay)
	return nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, idGen ids.Generator, authCfg auth.Config, logger *slog.Logger) (*App, error) {
	authService, err := auth.New(store, clk, idGen, authCfg, logger)
	if err != nil {
		return nil, err
	}
	authGate := gate.New(authService, logger)
	coordinator := broadcast.NewCoordinator(logger)
	controller := scoreboard.NewController(store, authGate, coordinator, clk, idGen, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		IDs:         idGen,
		AuthService: authService,
		Gate:        authGate,
		Scoreboard:  controller,
		Coordinator: coordinator,
	}, nil
}

// Close disconnects subscribers and releases resources in reverse order of acquisition
func (a *App) Close() error {
	a.Coordinator.Close()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
