package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
	"git.home.luguber.info/inful/psalter/internal/logfields"
	"git.home.luguber.info/inful/psalter/internal/markup"
)

// Builder assembles Document and Section batches for psalms 1..Count.
type Builder struct {
	Count       int
	Meter       string
	MediaPrefix string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewBuilder returns a builder for count psalms.
func NewBuilder(count int, meter, mediaPrefix string) *Builder {
	return &Builder{
		Count:       count,
		Meter:       meter,
		MediaPrefix: mediaPrefix,
		Now:         time.Now,
		Logger:      slog.Default(),
	}
}

// Build reads every psalm from src. Any unreadable psalm aborts the whole build:
// a partial corpus would break the stanza count of the missing psalm.
func (b *Builder) Build(ctx context.Context, src Source) (Batch, error) {
	batch := Batch{Documents: make([]Document, 0, b.Count)}
	created := b.Now().UTC()

	for number := 1; number <= b.Count; number++ {
		if err := ctx.Err(); err != nil {
			return Batch{}, errors.WrapError(err, errors.CategoryIngestion, "ingestion cancelled").Fatal().Build()
		}

		blocks, err := extract(number, src)
		if err != nil {
			return Batch{}, err
		}

		doc, sections := b.assemble(number, blocks, created)
		batch.Documents = append(batch.Documents, doc)
		batch.Sections = append(batch.Sections, sections...)

		b.Logger.Debug("Psalm extracted",
			logfields.Psalm(number),
			logfields.StanzaCount(doc.Stanzas),
			logfields.Source(src.Name(number)))
	}

	b.Logger.Info("Corpus built",
		slog.Int("psalms", len(batch.Documents)),
		slog.Int("stanzas", len(batch.Sections)))
	return batch, nil
}

func extract(number int, src Source) ([]string, error) {
	rc, err := src.Open(number)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryIngestion, "source document unreadable").
			Fatal().
			WithContext("psalm_number", number).
			WithContext(logfields.KeySource, src.Name(number)).
			Build()
	}
	defer func() {
		_ = rc.Close() // Ignore close errors on read-only operation
	}()

	blocks, err := markup.ExtractBlocks(rc)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryIngestion, "source document unreadable").
			Fatal().
			WithContext("psalm_number", number).
			WithContext(logfields.KeySource, src.Name(number)).
			Build()
	}
	return blocks, nil
}

func (b *Builder) assemble(number int, blocks []string, created time.Time) (Document, []Section) {
	sections := make([]Section, 0, len(blocks))
	for i, text := range blocks {
		sections = append(sections, Section{
			PsalmNumber: number,
			Number:      i + 1,
			Meter:       b.Meter,
			Text:        text,
			CreatedAt:   &created,
		})
	}

	return Document{
		Number:  number,
		Title:   Title(number),
		Meter:   b.Meter,
		Text:    strings.Join(blocks, "\n\n"),
		Stanzas: len(sections),
		Audio:   MediaReference(b.MediaPrefix, len(sections)),
	}, sections
}

// Title is the fixed display title of a psalm.
func Title(number int) string {
	return fmt.Sprintf("Psalm %d", number)
}

// MediaReference predicts the tune recording for a psalm of the given length.
// The file is not checked for existence. Psalms without stanzas have none.
func MediaReference(prefix string, stanzas int) *string {
	if stanzas <= 0 {
		return nil
	}
	ref := fmt.Sprintf("common-meter-%d.mp3", stanzas)
	if prefix != "" {
		ref = strings.TrimSuffix(prefix, "/") + "/" + ref
	}
	return &ref
}
