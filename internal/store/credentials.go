package store

import (
	"context"
	"database/sql"
	stderrors "errors"
)

// APIKeyExists reports whether key belongs to any credential. Matching is exact.
func (s *SQLiteStore) APIKeyExists(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM api_keys WHERE api_key = ? LIMIT 1", key).Scan(&one)
	if stderrors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageErr(err, "look up api key")
	}
	return true, nil
}

// ValidateUser reports whether username and key belong to the same credential.
func (s *SQLiteStore) ValidateUser(ctx context.Context, username, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM api_keys WHERE username = ? AND api_key = ? LIMIT 1", username, key).Scan(&one)
	if stderrors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageErr(err, "validate user")
	}
	return true, nil
}
