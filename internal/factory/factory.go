package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/syslvlup/syslvlup/internal/api"
	"github.com/syslvlup/syslvlup/internal/dependencies/clock"
	"github.com/syslvlup/syslvlup/internal/services/auth"
	"github.com/syslvlup/syslvlup/internal/services/syncstore"
	"github.com/syslvlup/syslvlup/internal/storage"
	"github.com/syslvlup/syslvlup/internal/storage/memory"
	redisstorage "github.com/syslvlup/syslvlup/internal/storage/redis"
	"github.com/syslvlup/syslvlup/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired server components
type App struct {
	Storage storage.Storage
	Clock   clock.Clock
	Logger  *slog.Logger

	AuthService *auth.Service
	SyncStore   *syncstore.Service
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// Zero fields fall back to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(store, clock.New(), cfg.AuthConfig, logger), nil
}

func openStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, authCfg auth.Config, logger *slog.Logger) *App {
	return &App{
		Storage:     store,
		Clock:       clk,
		Logger:      logger,
		AuthService: auth.New(store, clk, authCfg, logger),
		SyncStore:   syncstore.New(store, clk, logger),
	}
}

// Router returns the HTTP API handler for the app
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:      a.Logger,
		AuthService: a.AuthService,
		SyncStore:   a.SyncStore,
	})
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
