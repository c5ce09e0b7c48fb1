package cli

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds CLI configuration. Environment variables provide the
// defaults; flags override them.
type Config struct {
	ServerURL       string `env:"SYSLVL_SERVER" envDefault:"http://localhost:8080"`
	StateDir        string `env:"SYSLVL_STATE_DIR"`
	Output          string `env:"SYSLVL_OUTPUT" envDefault:"text"`
	SpiritualPreset string `env:"SYSLVL_SPIRITUAL_PRESET" envDefault:"light"`
	NoSync          bool   `env:"SYSLVL_NO_SYNC"`
	Strict          bool   `env:"SYSLVL_STRICT"`
	Verbose         bool
}

// DefaultConfig returns a Config populated from the environment
func DefaultConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.StateDir == "" {
		cfg.StateDir = defaultStateDir()
	}
	return cfg, nil
}

// IdentityFile is where the identity keys are kept
func (c *Config) IdentityFile() string {
	return filepath.Join(c.StateDir, "identity.json")
}

// ProfileFile is where the local profile is kept
func (c *Config) ProfileFile() string {
	return filepath.Join(c.StateDir, "profile.json")
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".syslvl"
	}
	return filepath.Join(home, ".syslvl")
}
