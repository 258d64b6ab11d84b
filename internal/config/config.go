// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// MemoryStore selects the in-memory store instead of a SQLite file.
const MemoryStore = ":memory:"

// Config holds every setting of a Kilnworld process. Flags parsed by the
// CLI override the values loaded here.
type Config struct {
	TelnetAddr    string `env:"KILN_TELNET_ADDR" envDefault:":4000"`
	WebSocketAddr string `env:"KILN_WEBSOCKET_ADDR" envDefault:":4001"`
	// MessageLimit is the largest input line handed to a session; longer
	// websocket messages arrive as several lines.
	MessageLimit   int    `env:"KILN_MESSAGE_LIMIT" envDefault:"4096"`
	StorePath      string `env:"KILN_STORE_PATH" envDefault:"data/world.db"`
	TemplatesPath  string `env:"KILN_TEMPLATES_PATH" envDefault:"data/templates"`
	ObserverName   string `env:"KILN_OBSERVER_NAME" envDefault:"ghost"`
	ObserverHash   string `env:"KILN_OBSERVER_PASSWORD_HASH"`
	ImportMaxBytes int    `env:"KILN_IMPORT_MAX_BYTES" envDefault:"4194304"`
	LogLevel       string `env:"KILN_LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"KILN_LOG_DEVELOPMENT" envDefault:"false"`
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	if strings.TrimSpace(c.TelnetAddr) == "" && strings.TrimSpace(c.WebSocketAddr) == "" {
		return fmt.Errorf("at least one of the telnet and websocket addresses is required")
	}
	if c.MessageLimit <= 0 {
		return fmt.Errorf("message limit must be positive, got %d", c.MessageLimit)
	}
	if c.ImportMaxBytes <= 0 {
		return fmt.Errorf("import limit must be positive, got %d", c.ImportMaxBytes)
	}
	if strings.TrimSpace(c.StorePath) == "" {
		return fmt.Errorf("store path is required")
	}
	return nil
}
