package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/psalter/internal/cache"
	"git.home.luguber.info/inful/psalter/internal/corpus"
	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
	"git.home.luguber.info/inful/psalter/internal/store"
)

// newCorpusStore loads psalms 1..n where psalm i has i%4 stanzas.
func newCorpusStore(t *testing.T, n int) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(t.Context(), filepath.Join(t.TempDir(), "psalter.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	_, _, err = s.EnsureSchema(t.Context(), store.Seed{Username: "admin", APIKey: "k"})
	require.NoError(t, err)

	var b corpus.Batch
	for i := 1; i <= n; i++ {
		count := i % 4
		for j := 1; j <= count; j++ {
			b.Sections = append(b.Sections, corpus.Section{
				PsalmNumber: i, Number: j, Meter: "common", Text: fmt.Sprintf("%d. verse of %d", j, i),
			})
		}
		b.Documents = append(b.Documents, corpus.Document{
			Number: i, Title: corpus.Title(i), Meter: "common", Stanzas: count,
			Audio: corpus.MediaReference("audio", count),
		})
	}
	require.NoError(t, s.Load(t.Context(), b))
	return s
}

func params(t *testing.T, raw string) ListParams {
	t.Helper()
	q, err := url.ParseQuery(raw)
	require.NoError(t, err)
	p, err := ParseListParams(q)
	require.NoError(t, err)
	return p
}

func decodeList(t *testing.T, payload []byte) []PsalmRecord {
	t.Helper()
	var out []PsalmRecord
	require.NoError(t, json.Unmarshal(payload, &out))
	return out
}

func numbers(records []PsalmRecord) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.Number)
	}
	return out
}

func TestListDocumentsCachesOnMiss(t *testing.T) {
	repo := newCorpusStore(t, 12)
	mem := cache.NewMemoryStore(time.Hour)
	svc := NewService(repo, mem)

	raw := "stanzas=2&stanzas=3"
	payload, err := svc.ListDocuments(t.Context(), raw, params(t, raw))
	require.NoError(t, err)
	require.Equal(t, []int{2, 3, 6, 7, 10, 11}, numbers(decodeList(t, payload)))

	stored, ok, err := mem.Get(t.Context(), "psalms_data_stanzas=2&stanzas=3")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, string(payload), string(stored))
}

func TestListDocumentsReturnsCachedPayloadVerbatim(t *testing.T) {
	repo := newCorpusStore(t, 3)
	mem := cache.NewMemoryStore(time.Hour)
	stale := []byte(`[{"number":99,"title":"Psalm 99"}]`)
	require.NoError(t, mem.Set(t.Context(), cache.Key(""), stale))

	payload, err := NewService(repo, mem).ListDocuments(t.Context(), "", ListParams{})
	require.NoError(t, err)
	require.Equal(t, string(stale), string(payload))
}

func TestListDocumentsCacheRoundTrip(t *testing.T) {
	repo := newCorpusStore(t, 20)
	cached := NewService(repo, cache.NewMemoryStore(time.Hour))
	direct := NewService(repo, nil)

	for _, raw := range []string{"", "stanzas=1", "page=2&per_page=5", "stanzas=3&page=1&per_page=2"} {
		first, err := cached.ListDocuments(t.Context(), raw, params(t, raw))
		require.NoError(t, err)
		second, err := cached.ListDocuments(t.Context(), raw, params(t, raw))
		require.NoError(t, err)
		bypass, err := direct.ListDocuments(t.Context(), raw, params(t, raw))
		require.NoError(t, err)

		if diff := cmp.Diff(decodeList(t, bypass), decodeList(t, second)); diff != "" {
			t.Fatalf("cached payload differs for %q (-direct +cached):\n%s", raw, diff)
		}
		require.Equal(t, string(first), string(second))
	}
}

func TestListDocumentsPagination(t *testing.T) {
	svc := NewService(newCorpusStore(t, 10), nil)

	cases := []struct {
		raw  string
		want []int
	}{
		{"", []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"page=2&per_page=3", []int{4, 5, 6}},
		{"page=4&per_page=3", []int{10}},
		{"page=5&per_page=3", []int{}},
		{"page=2", []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"per_page=2", []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"page=abc&per_page=2", []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"page=0&per_page=2", []int{}},
		{"page=1&per_page=0", []int{}},
		{"page=4611686018427387905&per_page=4", []int{}},
		{"page=9223372036854775807&per_page=2", []int{}},
		{"page=2&per_page=9223372036854775807", []int{}},
		{"page=1&per_page=9223372036854775807", []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
	}
	for _, tc := range cases {
		payload, err := svc.ListDocuments(t.Context(), tc.raw, params(t, tc.raw))
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.want, numbers(decodeList(t, payload)), tc.raw)
	}
}

func TestListDocumentsEmptyResultIsArray(t *testing.T) {
	svc := NewService(newCorpusStore(t, 4), nil)
	payload, err := svc.ListDocuments(t.Context(), "stanzas=9", params(t, "stanzas=9"))
	require.NoError(t, err)
	require.Equal(t, "[]", string(payload))
}

func TestParseListParamsRejectsBadStanzas(t *testing.T) {
	_, err := ParseListParams(url.Values{"stanzas": {"5", "five"}})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestPsalmRecordShape(t *testing.T) {
	rec, err := NewService(newCorpusStore(t, 4), nil).GetDocument(t.Context(), 4)
	require.NoError(t, err)

	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	require.JSONEq(t, `{"number":4,"title":"Psalm 4","subtitle":null,"meter":"common","stanzas":0,"audio":null,"text":""}`, string(raw))
}

func TestGetDocument(t *testing.T) {
	svc := NewService(newCorpusStore(t, 30), nil)

	rec, err := svc.GetDocument(t.Context(), 23)
	require.NoError(t, err)
	require.Equal(t, 23, rec.Number)
	require.Equal(t, "audio/common-meter-3.mp3", *rec.Audio)

	_, err = svc.GetDocument(t.Context(), 9999)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
	require.Equal(t, "Psalm not found", errors.NewHTTPErrorAdapter(nil).FormatErrorResponse(err).Error)
}

func TestGetSectionIncludesTotal(t *testing.T) {
	svc := NewService(newCorpusStore(t, 5), nil)

	detail, err := svc.GetSection(t.Context(), 3, 2)
	require.NoError(t, err)
	require.Equal(t, 3, detail.PsalmNumber)
	require.Equal(t, 2, detail.StanzaNumber)
	require.Equal(t, 3, detail.TotalStanzas)

	_, err = svc.GetSection(t.Context(), 3, 4)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestListSections(t *testing.T) {
	svc := NewService(newCorpusStore(t, 5), nil)

	recs, err := svc.ListSections(t.Context(), 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	require.Equal(t, 1, recs[0].StanzaNumber)
	require.Equal(t, 3, recs[2].StanzaNumber)

	_, err = svc.ListSections(t.Context(), 4)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
	require.Equal(t, "No stanzas found for this psalm", errors.NewHTTPErrorAdapter(nil).FormatErrorResponse(err).Error)
}

// fakeRepo lets tests inject failures on the parent lookup and list queries.
type fakeRepo struct {
	sections  map[[2]int]corpus.Section
	psalmErr  error
	listErr   error
	listCalls int
}

func (f *fakeRepo) ListPsalms(context.Context, store.ListOptions) ([]corpus.Document, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []corpus.Document{{Number: 1, Title: "Psalm 1"}}, nil
}

func (f *fakeRepo) GetPsalm(context.Context, int) (corpus.Document, bool, error) {
	if f.psalmErr != nil {
		return corpus.Document{}, false, f.psalmErr
	}
	return corpus.Document{}, false, nil
}

func (f *fakeRepo) GetStanza(_ context.Context, psalm, stanza int) (corpus.Section, bool, error) {
	s, ok := f.sections[[2]int{psalm, stanza}]
	return s, ok, nil
}

func (f *fakeRepo) ListStanzas(context.Context, int) ([]corpus.Section, error) { return nil, nil }

func TestGetSectionToleratesMissingParent(t *testing.T) {
	repo := &fakeRepo{sections: map[[2]int]corpus.Section{{7, 1}: {PsalmNumber: 7, Number: 1, Text: "orphan"}}}
	detail, err := NewService(repo, nil).GetSection(t.Context(), 7, 1)
	require.NoError(t, err)
	require.Equal(t, 0, detail.TotalStanzas)

	repo.psalmErr = errors.StorageError("storage unavailable").Build()
	detail, err = NewService(repo, nil).GetSection(t.Context(), 7, 1)
	require.NoError(t, err)
	require.Equal(t, 0, detail.TotalStanzas)
}

type brokenCache struct{ sets int }

func (b *brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.CacheError("nats down").Build()
}

func (b *brokenCache) Set(context.Context, string, []byte) error {
	b.sets++
	return errors.CacheError("nats down").Build()
}

func TestListDocumentsSurvivesCacheFailure(t *testing.T) {
	repo := &fakeRepo{}
	bc := &brokenCache{}
	payload, err := NewService(repo, bc).ListDocuments(t.Context(), "", ListParams{})
	require.NoError(t, err)
	require.Len(t, decodeList(t, payload), 1)
	require.Equal(t, 1, repo.listCalls)
	require.Equal(t, 1, bc.sets)
}

func TestListDocumentsPropagatesStorageFailure(t *testing.T) {
	repo := &fakeRepo{listErr: errors.StorageError("storage unavailable").Build()}
	mem := cache.NewMemoryStore(time.Hour)
	_, err := NewService(repo, mem).ListDocuments(t.Context(), "", ListParams{})
	require.True(t, errors.HasCategory(err, errors.CategoryStorage))
	require.Equal(t, 0, mem.Len())
}
