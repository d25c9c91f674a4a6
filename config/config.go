// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime knob. All fields come from environment
// variables; unset variables fall back to the defaults below.
type Config struct {
	// ThemeDir points at a directory of Lua theme packs. Empty means
	// built-in defaults only.
	ThemeDir string `env:"CRAWLCORE_THEME_DIR"`

	// GeminiAPIKey enables the narrator when set. Without it the engine
	// runs fully structured: events are journaled with no prose.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	// Model selects the narrator model.
	Model string `env:"CRAWLCORE_MODEL" envDefault:"gemini-2.5-flash"`

	// Seed fixes the dice generator when nonzero. Zero seeds from the
	// clock, the normal mode of play.
	Seed int64 `env:"CRAWLCORE_SEED"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// NarratorEnabled reports whether a narrator can be constructed.
func (c Config) NarratorEnabled() bool {
	return c.GeminiAPIKey != ""
}
