package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
)

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Storage.Path) == "" {
		problems = append(problems, "storage.path must be set")
	}
	if c.Cache.TTL <= 0 {
		problems = append(problems, "cache.ttl must be positive")
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Bucket) == "" {
		problems = append(problems, "cache.bucket must be set when the cache is enabled")
	}
	if c.Ingest.Documents < 1 {
		problems = append(problems, "ingest.documents must be at least 1")
	}
	if !strings.Contains(c.Ingest.FilePattern, "%") {
		problems = append(problems, "ingest.file_pattern must contain a number verb such as %02d")
	}
	if NormalizeRetryBackoff(c.Retry.Backoff) == "" {
		problems = append(problems, fmt.Sprintf("retry.backoff %q is not one of fixed|linear|exponential", c.Retry.Backoff))
	}
	if c.Retry.Initial <= 0 {
		problems = append(problems, "retry.initial must be positive")
	}
	if c.HTTP.RateLimit < 0 || c.HTTP.RateBurst < 0 {
		problems = append(problems, "http.rate_limit and http.rate_burst must not be negative")
	}
	if strings.TrimSpace(c.Auth.Header) == "" && strings.TrimSpace(c.Auth.QueryParam) == "" {
		problems = append(problems, "auth.header or auth.query_param must be set")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.ConfigError("invalid configuration").
		WithContext("problems", problems).
		WithCause(fmt.Errorf("%s", strings.Join(problems, "; "))).
		Build()
}
