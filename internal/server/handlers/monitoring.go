package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
	"git.home.luguber.info/inful/psalter/internal/logfields"
	"git.home.luguber.info/inful/psalter/internal/server/responses"
	"git.home.luguber.info/inful/psalter/internal/store"
	"git.home.luguber.info/inful/psalter/internal/version"
)

// Pinger reports storage reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AuditSource exposes the most recent corpus audit.
type AuditSource interface {
	Last() (store.AuditReport, bool)
}

// MonitoringHandlers contains monitoring-related HTTP handlers.
type MonitoringHandlers struct {
	storage      Pinger
	audits       AuditSource
	started      time.Time
	errorAdapter *errors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates a new monitoring handlers instance.
func NewMonitoringHandlers(storage Pinger, adapter *errors.HTTPErrorAdapter) *MonitoringHandlers {
	if adapter == nil {
		adapter = errors.NewHTTPErrorAdapter(nil)
	}
	return &MonitoringHandlers{storage: storage, started: time.Now(), errorAdapter: adapter}
}

// WithAudits reports the last corpus audit in health responses.
func (h *MonitoringHandlers) WithAudits(a AuditSource) *MonitoringHandlers {
	h.audits = a
	return h
}

// HandleHealthCheck answers 200 when storage responds and 503 otherwise.
// Audit violations are reported but do not change the status code.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := responses.HealthResponse{
		Status:    "ok",
		Storage:   "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(h.started).Seconds(),
	}
	status := http.StatusOK

	if h.storage != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.storage.Ping(ctx); err != nil {
			health.Status = "degraded"
			health.Storage = "unavailable"
			status = http.StatusServiceUnavailable
			slog.WarnContext(r.Context(), "Health check: storage unreachable", logfields.Error(err))
		}
	}

	if h.audits != nil {
		if report, ok := h.audits.Last(); ok {
			health.Corpus = "ok"
			if !report.OK() {
				health.Corpus = "violations"
			}
		}
	}

	if err := writeJSON(w, status, health); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			errors.WrapError(err, errors.CategoryInternal, "failed to write health response").Build())
	}
}
