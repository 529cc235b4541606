// Package config holds environment-driven defaults for the CLI.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config carries the settings every command shares. Values come from the
// environment; command-line flags override them.
type Config struct {
	StorePath    string `env:"JMDICT_VI_STORE" env-default:"dict.db"`
	Workers      int    `env:"JMDICT_VI_WORKERS" env-default:"0"` // 0 = all CPUs
	ChunkEntries int    `env:"JMDICT_VI_CHUNK_ENTRIES" env-default:"1000"`
}

// Load reads configuration from the environment with defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if cfg.ChunkEntries <= 0 {
		return nil, fmt.Errorf("config: chunk entries must be positive, got %d", cfg.ChunkEntries)
	}
	return &cfg, nil
}
