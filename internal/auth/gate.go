// Package auth gates the read API behind stored API keys.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
	"git.home.luguber.info/inful/psalter/internal/logfields"
	"git.home.luguber.info/inful/psalter/internal/metrics"
)

// Default request locations for the API key.
const (
	DefaultHeader     = "X-API-KEY"
	DefaultQueryParam = "api_key"
)

// unauthorizedMessage is shared by every rejection so that a missing key and
// an unknown key are indistinguishable to the caller.
const unauthorizedMessage = "Invalid or missing API key"

// KeyStore is the credential lookup the gate needs.
type KeyStore interface {
	APIKeyExists(ctx context.Context, key string) (bool, error)
	ValidateUser(ctx context.Context, username, key string) (bool, error)
}

// Gate checks request credentials against a KeyStore.
type Gate struct {
	keys       KeyStore
	header     string
	queryParam string
	recorder   metrics.Recorder
	logger     *slog.Logger
}

// NewGate returns a Gate reading the key from header, then queryParam.
// Empty names fall back to the defaults.
func NewGate(keys KeyStore, header, queryParam string) *Gate {
	if header == "" {
		header = DefaultHeader
	}
	if queryParam == "" {
		queryParam = DefaultQueryParam
	}
	return &Gate{
		keys:       keys,
		header:     header,
		queryParam: queryParam,
		recorder:   metrics.NoopRecorder{},
		logger:     slog.Default(),
	}
}

// WithRecorder sets the metrics recorder.
func (g *Gate) WithRecorder(r metrics.Recorder) *Gate {
	if r != nil {
		g.recorder = r
	}
	return g
}

// WithLogger sets the logger.
func (g *Gate) WithLogger(l *slog.Logger) *Gate {
	if l != nil {
		g.logger = l
	}
	return g
}

// Token extracts the candidate key. A non-empty header wins over the query
// parameter. The value is compared exactly; net/http already strips the
// optional whitespace around header values.
func (g *Gate) Token(r *http.Request) string {
	if v := r.Header.Get(g.header); v != "" {
		return v
	}
	return r.URL.Query().Get(g.queryParam)
}

// Authorize returns nil when the request carries a known key. Missing and
// unknown keys produce the same auth error; a failing KeyStore produces a
// storage error.
func (g *Gate) Authorize(r *http.Request) error {
	token := g.Token(r)
	if token == "" {
		return unauthorized()
	}
	ok, err := g.keys.APIKeyExists(r.Context(), token)
	if err != nil {
		return err
	}
	if !ok {
		return unauthorized()
	}
	return nil
}

func unauthorized() error {
	return errors.AuthError(unauthorizedMessage).Build()
}

// Require wraps next so that it only runs for authorized requests. Rejections
// are written through adapter.
func (g *Gate) Require(adapter *errors.HTTPErrorAdapter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := g.Authorize(r); err != nil {
			if errors.HasCategory(err, errors.CategoryAuth) {
				g.recorder.IncAuthRejected()
			} else {
				g.logger.ErrorContext(r.Context(), "API key lookup failed",
					logfields.Path(r.URL.Path), logfields.Error(err))
			}
			adapter.WriteErrorResponse(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ValidateUser reports whether username and key belong to the same credential.
// Blank inputs are never valid.
func (g *Gate) ValidateUser(ctx context.Context, username, key string) (bool, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(key) == "" {
		return false, nil
	}
	return g.keys.ValidateUser(ctx, username, key)
}
