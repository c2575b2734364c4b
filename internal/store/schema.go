package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"

	"github.com/google/uuid"
)

const schema = `
CREATE TABLE IF NOT EXISTS psalms (
	number     INTEGER PRIMARY KEY,
	title      TEXT NOT NULL,
	subtitle   TEXT,
	meter      TEXT,
	psalm_text TEXT NOT NULL DEFAULT '',
	stanzas    INTEGER NOT NULL DEFAULT 0,
	audio      TEXT
);
CREATE TABLE IF NOT EXISTS stanzas (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	psalm_number  INTEGER NOT NULL REFERENCES psalms(number) ON DELETE CASCADE,
	stanza_number INTEGER NOT NULL,
	meter         TEXT,
	stanza_text   TEXT NOT NULL,
	created_at    INTEGER,
	UNIQUE (psalm_number, stanza_number)
);
CREATE INDEX IF NOT EXISTS idx_psalms_stanzas ON psalms(stanzas);
CREATE TABLE IF NOT EXISTS api_keys (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	api_key  TEXT NOT NULL UNIQUE
);
`

// Seed is the credential created with the schema.
type Seed struct {
	Username string
	APIKey   string
}

// EnsureSchema creates the psalms, stanzas and api_keys tables when absent and
// seeds one credential. Running it again changes nothing. An empty seed key is
// replaced with a random one, which is returned so the operator can record it.
func (s *SQLiteStore) EnsureSchema(ctx context.Context, seed Seed) (Seed, bool, error) {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return Seed{}, false, storageErr(err, "create schema")
	}

	if seed.APIKey == "" {
		seed.APIKey = uuid.NewString()
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO api_keys (username, api_key) VALUES (?, ?)",
		seed.Username, seed.APIKey)
	if err != nil {
		return Seed{}, false, storageErr(err, "seed credential")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Seed{}, false, storageErr(err, "seed credential")
	}

	if n == 0 {
		// Already seeded: report the stored key, not the requested one.
		var stored string
		err := s.db.QueryRowContext(ctx, "SELECT api_key FROM api_keys WHERE username = ?", seed.Username).Scan(&stored)
		switch {
		case err == nil:
			seed.APIKey = stored
		case !stderrors.Is(err, sql.ErrNoRows):
			return Seed{}, false, storageErr(err, "read seeded credential")
		}
	}

	slog.Debug("Schema ensured", slog.String("seed_username", seed.Username), slog.Bool("seeded", n > 0))
	return seed, n > 0, nil
}
