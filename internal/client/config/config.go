package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the biobank CLI.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	SessionDB      string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults. The session database
// lives in the user's home directory when it can be found.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:9000"
	c.RequestTimeout = 10 * time.Second
	c.SessionDB = "biobank-session.db"
	if home, err := os.UserHomeDir(); err == nil {
		c.SessionDB = filepath.Join(home, ".biobank-session.db")
	}
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
