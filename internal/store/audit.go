package store

import (
	"context"
	"fmt"
)

// Violation describes a psalm whose stored stanzas disagree with its stanza count.
type Violation struct {
	Psalm    int    `json:"psalm_number"`
	Declared int    `json:"declared"`
	Actual   int    `json:"actual"`
	Reason   string `json:"reason"`
}

// AuditReport summarises the stored corpus.
type AuditReport struct {
	Psalms     int         `json:"psalms"`
	Stanzas    int         `json:"stanzas"`
	Missing    []int       `json:"missing,omitempty"` // psalm numbers absent from 1..expected
	Violations []Violation `json:"violations,omitempty"`
}

// OK reports whether the corpus satisfies every invariant.
func (r AuditReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Violations) == 0
}

// Audit checks that every psalm's stanza count equals its stanza rows and that
// those rows are numbered exactly 1..count. expected > 0 also checks that psalms
// 1..expected are all present.
func (s *SQLiteStore) Audit(ctx context.Context, expected int) (AuditReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.number, p.stanzas, COUNT(st.id),
		       COALESCE(MIN(st.stanza_number), 0), COALESCE(MAX(st.stanza_number), 0)
		FROM psalms p
		LEFT JOIN stanzas st ON st.psalm_number = p.number
		GROUP BY p.number
		ORDER BY p.number`)
	if err != nil {
		return AuditReport{}, storageErr(err, "audit corpus")
	}
	defer rows.Close()

	var report AuditReport
	present := make(map[int]bool)
	for rows.Next() {
		var number, declared, actual, lo, hi int
		if err := rows.Scan(&number, &declared, &actual, &lo, &hi); err != nil {
			return AuditReport{}, storageErr(err, "scan audit row")
		}
		present[number] = true
		report.Psalms++
		report.Stanzas += actual

		switch {
		case actual != declared:
			report.Violations = append(report.Violations, Violation{
				Psalm: number, Declared: declared, Actual: actual,
				Reason: "stanza count differs from stanza rows",
			})
		case actual > 0 && (lo != 1 || hi != actual):
			report.Violations = append(report.Violations, Violation{
				Psalm: number, Declared: declared, Actual: actual,
				Reason: fmt.Sprintf("stanza numbers span %d..%d, want 1..%d", lo, hi, actual),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return AuditReport{}, storageErr(err, "iterate audit rows")
	}

	for n := 1; n <= expected; n++ {
		if !present[n] {
			report.Missing = append(report.Missing, n)
		}
	}
	return report, nil
}
