package store

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/psalter/internal/config"
	"git.home.luguber.info/inful/psalter/internal/corpus"
	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
	"git.home.luguber.info/inful/psalter/internal/retry"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(t.Context(), filepath.Join(t.TempDir(), "db", "psalter.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	_, _, err = s.EnsureSchema(t.Context(), Seed{Username: "admin", APIKey: "test-key"})
	require.NoError(t, err)
	return s
}

// testBatch builds psalms 1..n where psalm i has i%4 stanzas.
func testBatch(n int) corpus.Batch {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	var b corpus.Batch
	for i := 1; i <= n; i++ {
		count := i % 4
		var texts []string
		for j := 1; j <= count; j++ {
			text := fmt.Sprintf("%d stanza of psalm %d", j, i)
			texts = append(texts, text)
			b.Sections = append(b.Sections, corpus.Section{
				PsalmNumber: i, Number: j, Meter: "common", Text: text, CreatedAt: &created,
			})
		}
		doc := corpus.Document{
			Number: i, Title: corpus.Title(i), Meter: "common", Stanzas: count,
			Audio: corpus.MediaReference("audio", count),
		}
		for k, t := range texts {
			if k > 0 {
				doc.Text += "\n\n"
			}
			doc.Text += t
		}
		b.Documents = append(b.Documents, doc)
	}
	return b
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	seed, inserted, err := s.EnsureSchema(t.Context(), Seed{Username: "admin", APIKey: "other-key"})
	require.NoError(t, err)
	require.False(t, inserted)
	require.Equal(t, "test-key", seed.APIKey)

	var count int
	require.NoError(t, s.db.QueryRowContext(t.Context(), "SELECT COUNT(*) FROM api_keys").Scan(&count))
	require.Equal(t, 1, count)

	ok, err := s.APIKeyExists(t.Context(), "test-key")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEnsureSchemaGeneratesMissingKey(t *testing.T) {
	s, err := Open(t.Context(), filepath.Join(t.TempDir(), "psalter.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	seed, inserted, err := s.EnsureSchema(t.Context(), Seed{Username: "admin"})
	require.NoError(t, err)
	require.True(t, inserted)
	require.NotEmpty(t, seed.APIKey)

	ok, err := s.APIKeyExists(t.Context(), seed.APIKey)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLoadAndQuery(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Load(t.Context(), testBatch(10)))

	all, err := s.ListPsalms(t.Context(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 10)
	for i, doc := range all {
		require.Equal(t, i+1, doc.Number)
	}

	doc, found, err := s.GetPsalm(t.Context(), 7)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Psalm 7", doc.Title)
	require.Equal(t, 3, doc.Stanzas)
	require.Nil(t, doc.Subtitle)
	require.Equal(t, "audio/common-meter-3.mp3", *doc.Audio)

	_, found, err = s.GetPsalm(t.Context(), 9999)
	require.NoError(t, err)
	require.False(t, found)

	sec, found, err := s.GetStanza(t.Context(), 7, 2)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2 stanza of psalm 7", sec.Text)
	require.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), *sec.CreatedAt)

	_, found, err = s.GetStanza(t.Context(), 7, 4)
	require.NoError(t, err)
	require.False(t, found)

	stanzas, err := s.ListStanzas(t.Context(), 3)
	require.NoError(t, err)
	require.Len(t, stanzas, 3)
	for i, st := range stanzas {
		require.Equal(t, i+1, st.Number)
	}

	stanzas, err = s.ListStanzas(t.Context(), 4)
	require.NoError(t, err)
	require.Empty(t, stanzas)
}

func TestListPsalmsFilterIsMembership(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Load(t.Context(), testBatch(12)))

	only2, err := s.ListPsalms(t.Context(), ListOptions{Stanzas: []int{2}})
	require.NoError(t, err)
	require.Equal(t, []int{2, 6, 10}, numbers(only2))

	union, err := s.ListPsalms(t.Context(), ListOptions{Stanzas: []int{2, 3}})
	require.NoError(t, err)
	require.Equal(t, []int{2, 3, 6, 7, 10, 11}, numbers(union))

	none, err := s.ListPsalms(t.Context(), ListOptions{Stanzas: []int{42}})
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestListPsalmsPagination(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Load(t.Context(), testBatch(10)))

	page2, err := s.ListPsalms(t.Context(), ListOptions{Paginate: true, Limit: 4, Offset: 4})
	require.NoError(t, err)
	require.Equal(t, []int{5, 6, 7, 8}, numbers(page2))

	beyond, err := s.ListPsalms(t.Context(), ListOptions{Paginate: true, Limit: 4, Offset: 40})
	require.NoError(t, err)
	require.Empty(t, beyond)
}

func TestLoadIsRepeatable(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Load(t.Context(), testBatch(8)))
	require.NoError(t, s.Load(t.Context(), testBatch(8)))

	report, err := s.Audit(t.Context(), 8)
	require.NoError(t, err)
	require.True(t, report.OK(), "%+v", report)
	require.Equal(t, 8, report.Psalms)
	require.Equal(t, 1+2+3+0+1+2+3+0, report.Stanzas)
}

func TestLoadRejectsInconsistentBatch(t *testing.T) {
	s := openTestStore(t)
	batch := testBatch(4)
	batch.Documents[2].Stanzas = 5

	err := s.Load(t.Context(), batch)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryIngestion))

	all, err := s.ListPsalms(t.Context(), ListOptions{})
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestLoadRollsBackOnFailure(t *testing.T) {
	s := openTestStore(t)
	batch := testBatch(4)
	// Two stanza rows with the same number violate the unique constraint mid-load.
	batch.Sections[len(batch.Sections)-1].Number = 1

	require.Error(t, s.Load(t.Context(), batch))

	all, err := s.ListPsalms(t.Context(), ListOptions{})
	require.NoError(t, err)
	require.Empty(t, all, "no psalm may be committed without its stanzas")
}

func TestAuditReportsViolations(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Load(t.Context(), testBatch(5)))

	_, err := s.db.ExecContext(t.Context(), "UPDATE psalms SET stanzas = 9 WHERE number = 2")
	require.NoError(t, err)
	_, err = s.db.ExecContext(t.Context(), "UPDATE stanzas SET stanza_number = 5 WHERE psalm_number = 3 AND stanza_number = 3")
	require.NoError(t, err)

	report, err := s.Audit(t.Context(), 7)
	require.NoError(t, err)
	require.False(t, report.OK())
	require.Equal(t, []int{6, 7}, report.Missing)
	require.Len(t, report.Violations, 2)
	require.Equal(t, 2, report.Violations[0].Psalm)
	require.Equal(t, 3, report.Violations[1].Psalm)
}

func TestValidateUser(t *testing.T) {
	s := openTestStore(t)

	ok, err := s.ValidateUser(t.Context(), "admin", "test-key")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.ValidateUser(t.Context(), "someone", "test-key")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.APIKeyExists(t.Context(), "TEST-KEY")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestConnectGivesUpWithBoundedPolicy(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	policy := retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, 0, 2)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := Connect(t.Context(), filepath.Join(blocker, "psalter.db"), policy, logger)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryStorage))
}

func numbers(docs []corpus.Document) []int {
	out := make([]int, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Number)
	}
	return out
}
