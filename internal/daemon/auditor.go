package daemon

import (
	"context"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/psalter/internal/logfields"
	"git.home.luguber.info/inful/psalter/internal/metrics"
	"git.home.luguber.info/inful/psalter/internal/store"
)

// CorpusAuditor checks stored corpus invariants.
type CorpusAuditor interface {
	Audit(ctx context.Context, expected int) (store.AuditReport, error)
}

// Auditor runs corpus audits, publishes the results as gauges and remembers
// the last report.
type Auditor struct {
	source   CorpusAuditor
	expected int
	recorder metrics.Recorder
	logger   *slog.Logger

	mu   sync.RWMutex
	last *store.AuditReport
}

// NewAuditor builds an Auditor expecting psalms 1..expected.
func NewAuditor(source CorpusAuditor, expected int, recorder metrics.Recorder, logger *slog.Logger) *Auditor {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{source: source, expected: expected, recorder: recorder, logger: logger}
}

// Run performs one audit.
func (a *Auditor) Run(ctx context.Context) (store.AuditReport, error) {
	report, err := a.source.Audit(ctx, a.expected)
	if err != nil {
		a.logger.Error("Corpus audit failed", logfields.Error(err))
		return store.AuditReport{}, err
	}

	a.recorder.SetCorpusSize(report.Psalms, report.Stanzas)
	a.recorder.SetAuditViolations(len(report.Violations))

	for _, v := range report.Violations {
		a.logger.Warn("Corpus invariant violated",
			logfields.Psalm(v.Psalm),
			logfields.StanzaCount(v.Declared),
			slog.Int("stored", v.Actual),
			slog.String("reason", v.Reason))
	}
	if len(report.Missing) > 0 {
		a.logger.Warn("Corpus is missing psalms", slog.Any("missing", report.Missing))
	}
	if report.OK() {
		a.logger.Debug("Corpus audit passed",
			slog.Int("psalms", report.Psalms), slog.Int("stanzas", report.Stanzas))
	}

	a.mu.Lock()
	a.last = &report
	a.mu.Unlock()
	return report, nil
}

// Last returns the most recent successful report.
func (a *Auditor) Last() (store.AuditReport, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.last == nil {
		return store.AuditReport{}, false
	}
	return *a.last, true
}
