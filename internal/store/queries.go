package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"git.home.luguber.info/inful/psalter/internal/corpus"
)

// ListOptions narrows a psalm listing. A nil Stanzas filter means no filter;
// Limit/Offset apply only when Paginate is set.
type ListOptions struct {
	Stanzas  []int
	Paginate bool
	Limit    int
	Offset   int
}

const psalmColumns = "number, title, subtitle, meter, psalm_text, stanzas, audio"

// ListPsalms returns psalms ordered by number, restricted to the given stanza
// counts (membership, not range) and optionally paginated.
func (s *SQLiteStore) ListPsalms(ctx context.Context, opts ListOptions) ([]corpus.Document, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString("SELECT " + psalmColumns + " FROM psalms")
	if len(opts.Stanzas) > 0 {
		query.WriteString(" WHERE stanzas IN (")
		for i, n := range opts.Stanzas {
			if i > 0 {
				query.WriteString(", ")
			}
			query.WriteString("?")
			args = append(args, n)
		}
		query.WriteString(")")
	}
	query.WriteString(" ORDER BY number")
	if opts.Paginate {
		query.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, storageErr(err, "query psalms")
	}
	defer rows.Close()

	docs := []corpus.Document{}
	for rows.Next() {
		doc, err := scanPsalm(rows)
		if err != nil {
			return nil, storageErr(err, "scan psalm")
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "iterate psalms")
	}
	return docs, nil
}

// GetPsalm looks a psalm up by number. found is false when no row exists.
func (s *SQLiteStore) GetPsalm(ctx context.Context, number int) (corpus.Document, bool, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+psalmColumns+" FROM psalms WHERE number = ?", number)
	doc, err := scanPsalm(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return corpus.Document{}, false, nil
	}
	if err != nil {
		return corpus.Document{}, false, storageErr(err, "get psalm")
	}
	return doc, true, nil
}

const stanzaColumns = "id, psalm_number, stanza_number, meter, stanza_text, created_at"

// GetStanza looks a stanza up by psalm number and 1-based stanza number.
func (s *SQLiteStore) GetStanza(ctx context.Context, psalm, stanza int) (corpus.Section, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+stanzaColumns+" FROM stanzas WHERE psalm_number = ? AND stanza_number = ?", psalm, stanza)
	sec, err := scanStanza(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return corpus.Section{}, false, nil
	}
	if err != nil {
		return corpus.Section{}, false, storageErr(err, "get stanza")
	}
	return sec, true, nil
}

// ListStanzas returns a psalm's stanzas ordered by stanza number.
func (s *SQLiteStore) ListStanzas(ctx context.Context, psalm int) ([]corpus.Section, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+stanzaColumns+" FROM stanzas WHERE psalm_number = ? ORDER BY stanza_number", psalm)
	if err != nil {
		return nil, storageErr(err, "query stanzas")
	}
	defer rows.Close()

	var sections []corpus.Section
	for rows.Next() {
		sec, err := scanStanza(rows)
		if err != nil {
			return nil, storageErr(err, "scan stanza")
		}
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "iterate stanzas")
	}
	return sections, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPsalm(r scanner) (corpus.Document, error) {
	var (
		doc      corpus.Document
		subtitle sql.NullString
		meter    sql.NullString
		audio    sql.NullString
	)
	if err := r.Scan(&doc.Number, &doc.Title, &subtitle, &meter, &doc.Text, &doc.Stanzas, &audio); err != nil {
		return corpus.Document{}, err
	}
	doc.Meter = meter.String
	doc.Subtitle = stringPtr(subtitle)
	doc.Audio = stringPtr(audio)
	return doc, nil
}

func scanStanza(r scanner) (corpus.Section, error) {
	var (
		sec     corpus.Section
		meter   sql.NullString
		created sql.NullInt64
	)
	if err := r.Scan(&sec.ID, &sec.PsalmNumber, &sec.Number, &meter, &sec.Text, &created); err != nil {
		return corpus.Section{}, err
	}
	sec.Meter = meter.String
	if created.Valid {
		t := time.Unix(created.Int64, 0).UTC()
		sec.CreatedAt = &t
	}
	return sec, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
