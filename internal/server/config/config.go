// Package config loads runtime configuration for the LotKeeper server.
// Precedence: defaults, then an optional JSON file (-c/-config), then flags.
package config

import "time"

// Config holds runtime settings for the sync server.
type Config struct {
	// EndpointAddr is the HTTP listen address.
	EndpointAddr string
	// DatabaseDSN is the Postgres connection string.
	DatabaseDSN string
	// SecretKey signs and verifies device tokens.
	SecretKey string

	// Object storage (S3-compatible) settings.
	S3Region       string
	S3Bucket       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string

	// UploadURLExpiry bounds presigned PUT lifetime.
	UploadURLExpiry time.Duration
	// DownloadURLExpiry is the default presigned GET lifetime.
	DownloadURLExpiry time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.S3Region = "us-east-1"
	c.S3Bucket = "lotkeeper"
	c.UploadURLExpiry = 60 * time.Second
	c.DownloadURLExpiry = 7 * 24 * time.Hour
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
