// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/janpfeifer/GoMemory/internal/game"
	"github.com/joho/godotenv"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadDotEnv loads files (default ".env") into the environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreJSON   = "json"
	StoreMemory = "memory"
)

// Config is the server configuration.
type Config struct {
	Addr        string        `env:"MEMORY_ADDR" envDefault:"localhost:8080"`
	Store       string        `env:"MEMORY_STORE" envDefault:"sqlite"`
	StorePath   string        `env:"MEMORY_STORE_PATH" envDefault:"data/memory.db"`
	SettleDelay time.Duration `env:"MEMORY_SETTLE_DELAY" envDefault:"300ms"`
	Columns     int           `env:"MEMORY_COLUMNS" envDefault:"3"`
	Rows        int           `env:"MEMORY_ROWS" envDefault:"2"`
	Icons       int           `env:"MEMORY_ICONS" envDefault:"12"`
	ScoreExpr   string        `env:"MEMORY_SCORE_EXPR"`
}

// Load reads .env and the environment into a validated Config.
func Load() (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the game cannot start with.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreJSON, StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if grid := (game.GridSpec{Columns: c.Columns, Rows: c.Rows}); !grid.Valid() {
		return fmt.Errorf("grid must be positive with at most %d cards, got %s", game.MaxCards, grid)
	}
	if c.Icons <= 0 {
		return fmt.Errorf("icon catalog must not be empty")
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle delay must not be negative")
	}
	return nil
}
