package corpus

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
)

func page(stanzas ...string) *fstest.MapFile {
	body := "<html><body><h1>heading</h1>"
	for _, s := range stanzas {
		body += "<pre>" + s + "</pre>\n"
	}
	return &fstest.MapFile{Data: []byte(body + "</body></html>")}
}

func testBuilder(count int) *Builder {
	b := NewBuilder(count, "common", "audio")
	b.Now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	b.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return b
}

func TestBuildAssemblesDocumentsAndSections(t *testing.T) {
	fsys := fstest.MapFS{
		"psalm-01.html": page("1 Blessed is the man", "2 But his delight", "3 Like a tree"),
		"psalm-02.html": page("Prelude only"),
		"psalm-03.html": page("1 Lord, how are they increased"),
	}

	batch, err := testBuilder(3).Build(t.Context(), NewFSSource(fsys, "psalm-%02d.html"))
	require.NoError(t, err)
	require.Len(t, batch.Documents, 3)
	require.Len(t, batch.Sections, 4)

	first := batch.Documents[0]
	require.Equal(t, 1, first.Number)
	require.Equal(t, "Psalm 1", first.Title)
	require.Equal(t, "common", first.Meter)
	require.Equal(t, 3, first.Stanzas)
	require.Equal(t, "1 Blessed is the man\n\n2 But his delight\n\n3 Like a tree", first.Text)
	require.NotNil(t, first.Audio)
	require.Equal(t, "audio/common-meter-3.mp3", *first.Audio)
	require.Nil(t, first.Subtitle)

	empty := batch.Documents[1]
	require.Equal(t, 0, empty.Stanzas)
	require.Empty(t, empty.Text)
	require.Nil(t, empty.Audio)

	sections := batch.SectionsOf(1)
	require.Len(t, sections, 3)
	require.Equal(t, "2 But his delight", sections[1].Text)
	require.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), *sections[0].CreatedAt)
}

// Every psalm's stanza count equals its section rows and the ordinals are exactly 1..n.
func TestBuildSectionCountInvariant(t *testing.T) {
	fsys := fstest.MapFS{}
	for n := 1; n <= 12; n++ {
		var stanzas []string
		for i := 1; i <= n%5; i++ {
			stanzas = append(stanzas, fmt.Sprintf("%d stanza %d of psalm %d", i, i, n))
		}
		fsys[fmt.Sprintf("psalm-%02d.html", n)] = page(stanzas...)
	}

	batch, err := testBuilder(12).Build(t.Context(), NewFSSource(fsys, "psalm-%02d.html"))
	require.NoError(t, err)

	for _, doc := range batch.Documents {
		sections := batch.SectionsOf(doc.Number)
		require.Len(t, sections, doc.Stanzas, "psalm %d", doc.Number)
		for i, s := range sections {
			require.Equal(t, i+1, s.Number, "psalm %d ordinal", doc.Number)
		}
	}
}

func TestBuildMissingSourceIsFatal(t *testing.T) {
	fsys := fstest.MapFS{
		"psalm-01.html": page("1 present"),
		"psalm-03.html": page("1 present"),
	}

	batch, err := testBuilder(3).Build(t.Context(), NewFSSource(fsys, "psalm-%02d.html"))
	require.Error(t, err)
	require.Empty(t, batch.Documents)
	require.True(t, errors.HasCategory(err, errors.CategoryIngestion))

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	require.True(t, ce.IsFatal())
	src, _ := ce.Context().GetString("source")
	require.Equal(t, "psalm-02.html", src)
}

func TestBuildHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := testBuilder(1).Build(ctx, NewFSSource(fstest.MapFS{"psalm-01.html": page("1 x")}, "psalm-%02d.html"))
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFSSourceNamesThreeDigitPsalms(t *testing.T) {
	src := NewFSSource(fstest.MapFS{}, "psalm-%02d.html")
	require.Equal(t, "psalm-07.html", src.Name(7))
	require.Equal(t, "psalm-119.html", src.Name(119))
}

func TestMediaReference(t *testing.T) {
	require.Nil(t, MediaReference("audio", 0))
	require.Equal(t, "common-meter-4.mp3", *MediaReference("", 4))
	require.Equal(t, "media/common-meter-2.mp3", *MediaReference("media/", 2))
}
