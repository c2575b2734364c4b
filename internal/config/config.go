// Package config loads the psalter YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
)

// Config represents the application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Retry   RetryConfig   `yaml:"retry"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// StorageConfig locates the relational store.
type StorageConfig struct {
	Path string `yaml:"path"` // SQLite file path or DSN
}

// CacheConfig configures the NATS JetStream key-value cache.
type CacheConfig struct {
	Enabled bool     `yaml:"enabled"`
	NATSURL string   `yaml:"nats_url"`
	Bucket  string   `yaml:"bucket"`
	TTL     Duration `yaml:"ttl"`
	Timeout Duration `yaml:"timeout"` // per get/set call
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Address           string   `yaml:"address"`
	CORSAllowOrigin   string   `yaml:"cors_allow_origin,omitempty"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	RateLimit         float64  `yaml:"rate_limit,omitempty"` // requests per second; 0 disables
	RateBurst         int      `yaml:"rate_burst,omitempty"`
}

// AuthConfig configures API key extraction and the seeded credential.
type AuthConfig struct {
	Header       string `yaml:"header"`
	QueryParam   string `yaml:"query_param"`
	SeedUsername string `yaml:"seed_username"`
	SeedAPIKey   string `yaml:"seed_api_key,omitempty"` // generated when empty
}

// IngestConfig describes where the markup corpus lives and how records are derived.
type IngestConfig struct {
	SourceDir   string `yaml:"source_dir"`
	FilePattern string `yaml:"file_pattern"` // fmt pattern taking the psalm number
	Documents   int    `yaml:"documents"`
	Meter       string `yaml:"meter"`
	MediaPrefix string `yaml:"media_prefix"`
}

// MetricsConfig controls the Prometheus endpoint and the periodic corpus audit.
type MetricsConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Path          string   `yaml:"path"`
	AuditInterval Duration `yaml:"audit_interval"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "5s" or "1h".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load loads configuration from the specified file. A missing file yields the
// defaults so the service can run from environment variables alone.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		return cfg, cfg.Validate()
	case err != nil:
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
			WithContext("path", configPath).
			Build()
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
