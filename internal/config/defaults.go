package config

import (
	"math"
	"time"
)

const (
	// DefaultDocuments is the size of the psalter corpus.
	DefaultDocuments = 150
	// DefaultCacheTTL bounds how long a cached psalm list may be served.
	DefaultCacheTTL = 3600 * time.Second
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Cache:   CacheConfig{Enabled: true},
		Metrics: MetricsConfig{Enabled: true},
		Retry:   RetryConfig{MaxRetries: -1},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills zero values. Booleans and MaxRetries are left as decoded.
func (c *Config) applyDefaults() {
	if c.Storage.Path == "" {
		c.Storage.Path = "./data/psalter.db"
	}

	if c.Cache.NATSURL == "" {
		c.Cache.NATSURL = "nats://127.0.0.1:4222"
	}
	if c.Cache.Bucket == "" {
		c.Cache.Bucket = "psalms"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = Duration(DefaultCacheTTL)
	}
	if c.Cache.Timeout == 0 {
		c.Cache.Timeout = Duration(2 * time.Second)
	}

	if c.HTTP.Address == "" {
		c.HTTP.Address = ":5000"
	}
	if c.HTTP.ReadHeaderTimeout == 0 {
		c.HTTP.ReadHeaderTimeout = Duration(10 * time.Second)
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.RateBurst == 0 {
		c.HTTP.RateBurst = int(math.Ceil(c.HTTP.RateLimit))
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = Duration(30 * time.Second)
	}

	if c.Auth.Header == "" {
		c.Auth.Header = "X-API-KEY"
	}
	if c.Auth.QueryParam == "" {
		c.Auth.QueryParam = "api_key"
	}
	if c.Auth.SeedUsername == "" {
		c.Auth.SeedUsername = "admin"
	}

	if c.Ingest.SourceDir == "" {
		c.Ingest.SourceDir = "/data_sources"
	}
	if c.Ingest.FilePattern == "" {
		c.Ingest.FilePattern = "psalm-%02d.html"
	}
	if c.Ingest.Documents == 0 {
		c.Ingest.Documents = DefaultDocuments
	}
	if c.Ingest.Meter == "" {
		c.Ingest.Meter = "common"
	}
	if c.Ingest.MediaPrefix == "" {
		c.Ingest.MediaPrefix = "audio"
	}

	if c.Retry.Backoff == "" {
		c.Retry.Backoff = string(RetryBackoffFixed)
	}
	if c.Retry.Initial == 0 {
		c.Retry.Initial = Duration(5 * time.Second)
	}
	if c.Retry.Max == 0 {
		c.Retry.Max = c.Retry.Initial
	}

	if c.Logging.Level == "" {
		c.Logging.Level = string(LogLevelInfo)
	}
	if c.Logging.Format == "" {
		c.Logging.Format = string(LogFormatText)
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.AuditInterval == 0 {
		c.Metrics.AuditInterval = Duration(5 * time.Minute)
	}
}
