package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syslvlup/syslvlup/internal/factory"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, factory.StorageTypeMemory, cfg.Storage)
	assert.Equal(t, 30*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.LinkTTL)
	assert.Equal(t, 90*24*time.Hour, cfg.AnonymousDataTTL)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SYSLVL_PORT", "9090")
	t.Setenv("SYSLVL_STORAGE", "redis")
	t.Setenv("SYSLVL_REDIS_URL", "redis://cache:6379")
	t.Setenv("SYSLVL_JWT_SECRET", "s3cret")
	t.Setenv("SYSLVL_TOKEN_TTL", "1h")
	t.Setenv("SYSLVL_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	fc := cfg.Factory(nil)
	assert.Equal(t, factory.StorageTypeRedis, fc.StorageType)
	require.NotNil(t, fc.RedisConfig)
	assert.Equal(t, "redis://cache:6379", fc.RedisConfig.URL)
	assert.Equal(t, []byte("s3cret"), fc.AuthConfig.Secret)
	assert.Equal(t, time.Hour, fc.AuthConfig.TokenTTL)

	assert.Equal(t, 9090, cfg.HTTP().Port)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestEmptySecretFallsBackToAuthDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Factory(nil).AuthConfig.Secret)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown storage", map[string]string{"SYSLVL_STORAGE": "mongo"}},
		{"redis without url", map[string]string{"SYSLVL_STORAGE": "redis"}},
		{"bad port", map[string]string{"SYSLVL_PORT": "0"}},
		{"non-numeric port", map[string]string{"SYSLVL_PORT": "http"}},
		{"bad log level", map[string]string{"SYSLVL_LOG_LEVEL": "loud"}},
		{"bad duration", map[string]string{"SYSLVL_TOKEN_TTL": "forever"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
