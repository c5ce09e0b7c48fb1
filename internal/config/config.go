// Package config loads the sync server's settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/syslvlup/syslvlup/internal/api"
	"github.com/syslvlup/syslvlup/internal/factory"
	"github.com/syslvlup/syslvlup/internal/services/auth"
	redisstorage "github.com/syslvlup/syslvlup/internal/storage/redis"
)

// Server holds the sync server settings
type Server struct {
	Host string `env:"SYSLVL_HOST"`
	Port int    `env:"SYSLVL_PORT" envDefault:"8080"`

	Storage    string `env:"SYSLVL_STORAGE" envDefault:"memory"`
	RedisURL   string `env:"SYSLVL_REDIS_URL"`
	SQLitePath string `env:"SYSLVL_SQLITE_PATH" envDefault:"syslvlup.db"`

	// AnonymousDataTTL applies to the Redis backend only
	AnonymousDataTTL time.Duration `env:"SYSLVL_ANONYMOUS_DATA_TTL" envDefault:"2160h"`

	JWTSecret string        `env:"SYSLVL_JWT_SECRET"`
	TokenTTL  time.Duration `env:"SYSLVL_TOKEN_TTL" envDefault:"720h"`
	LinkTTL   time.Duration `env:"SYSLVL_LINK_TTL" envDefault:"5m"`

	LogLevel string `env:"SYSLVL_LOG_LEVEL" envDefault:"info"`
}

// Load parses the server settings from the environment
func Load() (*Server, error) {
	cfg := &Server{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other
func (c *Server) Validate() error {
	switch c.Storage {
	case factory.StorageTypeMemory, factory.StorageTypeSQLite:
	case factory.StorageTypeRedis:
		if c.RedisURL == "" {
			return errors.New("SYSLVL_REDIS_URL required when SYSLVL_STORAGE=redis")
		}
	default:
		return fmt.Errorf("invalid SYSLVL_STORAGE %q: must be memory, redis or sqlite", c.Storage)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid SYSLVL_PORT %d", c.Port)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level
func (c *Server) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid SYSLVL_LOG_LEVEL %q", c.LogLevel)
	}
	return level, nil
}

// Factory builds the application factory config
func (c *Server) Factory(logger *slog.Logger) factory.Config {
	authCfg := auth.Config{
		TokenTTL: c.TokenTTL,
		LinkTTL:  c.LinkTTL,
	}
	if c.JWTSecret != "" {
		authCfg.Secret = []byte(c.JWTSecret)
	}

	cfg := factory.Config{
		AuthConfig:  authCfg,
		Logger:      logger,
		StorageType: c.Storage,
		SQLitePath:  c.SQLitePath,
	}
	if c.Storage == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		redisCfg.AnonymousDataTTL = c.AnonymousDataTTL
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

// HTTP builds the HTTP server config
func (c *Server) HTTP() api.ServerConfig {
	cfg := api.DefaultServerConfig()
	cfg.Host = c.Host
	cfg.Port = c.Port
	return cfg
}
