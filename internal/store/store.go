// Package store keeps the psalter corpus and API keys in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
	"git.home.luguber.info/inful/psalter/internal/logfields"
	"git.home.luguber.info/inful/psalter/internal/retry"
)

// SQLiteStore implements the corpus, credential and audit queries on SQLite.
// It is safe for concurrent use; database/sql owns the connection pool.
type SQLiteStore struct {
	db *sql.DB
}

// DSN turns a database path into a modernc DSN with foreign keys and a busy timeout.
// Values that already carry query parameters are used verbatim.
func DSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Open opens the database once and fails immediately when it is unreachable.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "storage unavailable").Build()
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close() // Best effort cleanup on connect failure
		return nil, errors.WrapError(err, errors.CategoryStorage, "storage unavailable").Build()
	}
	return &SQLiteStore{db: db}, nil
}

// Connect opens the database, waiting out unavailability according to policy.
// Only schema setup uses it; every other caller uses Open and fails fast.
func Connect(ctx context.Context, path string, policy retry.Policy, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var s *SQLiteStore
	err := retry.Do(ctx, policy, nil,
		func(attempt int, err error) {
			logger.Warn("Storage not reachable yet, retrying",
				logfields.Attempt(attempt),
				slog.Duration("wait", policy.Delay(attempt)),
				logfields.Error(err))
		},
		func(ctx context.Context) error {
			opened, err := Open(ctx, path)
			if err != nil {
				return err
			}
			s = opened
			return nil
		})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "storage unavailable").Fatal().Build()
	}
	logger.Info("Connected to storage", slog.String("path", path))
	return s, nil
}

func ensureDir(path string) error {
	if path == "" || strings.HasPrefix(path, ":memory:") || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "storage unavailable").
			WithContext("dir", dir).
			Build()
	}
	return nil
}

// Ping checks the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "storage unavailable").Build()
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func storageErr(err error, op string) error {
	return errors.StorageError("storage unavailable").WithCause(fmt.Errorf("%s: %w", op, err)).Build()
}
