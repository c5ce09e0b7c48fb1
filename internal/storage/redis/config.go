package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// AnonymousDataTTL expires payloads of ids that never registered (user_ prefix).
	// Zero keeps them forever.
	AnonymousDataTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:              "redis://localhost:6379",
		PoolSize:         10,
		MinIdleConns:     2,
		AnonymousDataTTL: 90 * 24 * time.Hour,
	}
}
