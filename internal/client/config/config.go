// Package config loads runtime configuration for the LotKeeper client.
//
// Sources and precedence:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
package config

import "time"

// Config holds runtime settings for the capture client.
type Config struct {
	// ServerEndpointAddr is the base URL of the sync server.
	ServerEndpointAddr string
	// DBPath is the SQLite database file.
	DBPath string
	// DeviceToken is the bearer token presented to the server.
	DeviceToken string
	// UserID scopes object keys; must match the token's claim.
	UserID string
	// OnlineCheckInterval is how often the client probes connectivity.
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DBPath = "lotkeeper.db"
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
