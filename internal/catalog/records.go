package catalog

import (
	"time"

	"git.home.luguber.info/inful/psalter/internal/corpus"
)

// PsalmRecord is the public JSON shape of a psalm.
type PsalmRecord struct {
	Number   int     `json:"number"`
	Title    string  `json:"title"`
	Subtitle *string `json:"subtitle"`
	Meter    string  `json:"meter"`
	Stanzas  int     `json:"stanzas"`
	Audio    *string `json:"audio"`
	Text     string  `json:"text"`
}

// StanzaRecord is the public JSON shape of a stanza.
type StanzaRecord struct {
	PsalmNumber  int        `json:"psalm_number"`
	StanzaNumber int        `json:"stanza_number"`
	Meter        string     `json:"meter"`
	Text         string     `json:"text"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// StanzaDetail is a single stanza together with its psalm's stanza count.
type StanzaDetail struct {
	StanzaRecord
	TotalStanzas int `json:"total_stanzas"`
}

func psalmRecord(d corpus.Document) PsalmRecord {
	return PsalmRecord{
		Number:   d.Number,
		Title:    d.Title,
		Subtitle: d.Subtitle,
		Meter:    d.Meter,
		Stanzas:  d.Stanzas,
		Audio:    d.Audio,
		Text:     d.Text,
	}
}

func stanzaRecord(s corpus.Section) StanzaRecord {
	return StanzaRecord{
		PsalmNumber:  s.PsalmNumber,
		StanzaNumber: s.Number,
		Meter:        s.Meter,
		Text:         s.Text,
		CreatedAt:    s.CreatedAt,
	}
}
