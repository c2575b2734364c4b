package store

import (
	"context"
	"database/sql"
	"fmt"

	"git.home.luguber.info/inful/psalter/internal/corpus"
	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
)

// Load writes a batch inside one transaction: either every psalm and stanza
// lands or nothing does. Each psalm row is upserted and its stanzas replaced,
// so loading the same batch twice leaves the same rows behind.
func (s *SQLiteStore) Load(ctx context.Context, batch corpus.Batch) (err error) {
	byPsalm := make(map[int][]corpus.Section, len(batch.Documents))
	for _, doc := range batch.Documents {
		byPsalm[doc.Number] = batch.SectionsOf(doc.Number)
		if got := len(byPsalm[doc.Number]); got != doc.Stanzas {
			return errors.IngestionError("stanza count does not match stanza records").
				WithContext("psalm_number", doc.Number).
				WithContext("declared", doc.Stanzas).
				WithContext("records", got).
				Build()
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(err, "begin load")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() // Rollback error is secondary to the load failure
		}
	}()

	upsertPsalm, err := tx.PrepareContext(ctx, `
		INSERT INTO psalms (number, title, subtitle, meter, psalm_text, stanzas, audio)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(number) DO UPDATE SET
			title = excluded.title,
			subtitle = excluded.subtitle,
			meter = excluded.meter,
			psalm_text = excluded.psalm_text,
			stanzas = excluded.stanzas,
			audio = excluded.audio`)
	if err != nil {
		return storageErr(err, "prepare psalm upsert")
	}
	defer upsertPsalm.Close()

	clearStanzas, err := tx.PrepareContext(ctx, "DELETE FROM stanzas WHERE psalm_number = ?")
	if err != nil {
		return storageErr(err, "prepare stanza delete")
	}
	defer clearStanzas.Close()

	insertStanza, err := tx.PrepareContext(ctx,
		"INSERT INTO stanzas (psalm_number, stanza_number, meter, stanza_text, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return storageErr(err, "prepare stanza insert")
	}
	defer insertStanza.Close()

	for _, doc := range batch.Documents {
		if _, err = upsertPsalm.ExecContext(ctx,
			doc.Number, doc.Title, nullString(doc.Subtitle), doc.Meter, doc.Text, doc.Stanzas, nullString(doc.Audio),
		); err != nil {
			return storageErr(err, fmt.Sprintf("upsert psalm %d", doc.Number))
		}
		if _, err = clearStanzas.ExecContext(ctx, doc.Number); err != nil {
			return storageErr(err, fmt.Sprintf("clear stanzas of psalm %d", doc.Number))
		}
		for _, sec := range byPsalm[doc.Number] {
			var created sql.NullInt64
			if sec.CreatedAt != nil {
				created = sql.NullInt64{Int64: sec.CreatedAt.Unix(), Valid: true}
			}
			if _, err = insertStanza.ExecContext(ctx, sec.PsalmNumber, sec.Number, sec.Meter, sec.Text, created); err != nil {
				return storageErr(err, fmt.Sprintf("insert stanza %d of psalm %d", sec.Number, sec.PsalmNumber))
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return storageErr(err, "commit load")
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
