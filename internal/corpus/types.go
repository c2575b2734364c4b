// Package corpus turns extracted stanza blocks into psalm and stanza records ready for loading.
package corpus

import "time"

// Document is one numbered psalm.
type Document struct {
	Number   int
	Title    string
	Subtitle *string
	Meter    string
	Text     string
	Stanzas  int // always len of the psalm's Section records
	Audio    *string
}

// Section is one stanza of a psalm. ID is assigned by storage.
type Section struct {
	ID          int64
	PsalmNumber int
	Number      int // 1-based position within the psalm
	Meter       string
	Text        string
	CreatedAt   *time.Time
}

// Batch holds the two record sets produced by one ingestion run.
type Batch struct {
	Documents []Document
	Sections  []Section
}

// SectionsOf returns the sections belonging to the given psalm, in batch order.
func (b Batch) SectionsOf(number int) []Section {
	var out []Section
	for _, s := range b.Sections {
		if s.PsalmNumber == number {
			out = append(out, s)
		}
	}
	return out
}
