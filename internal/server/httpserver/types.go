package httpserver

import (
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/psalter/internal/auth"
	"git.home.luguber.info/inful/psalter/internal/metrics"
	"git.home.luguber.info/inful/psalter/internal/server/handlers"
)

// Options carries the collaborators the server routes to. Catalog, Gate and
// Storage are required.
type Options struct {
	Catalog handlers.Catalog
	Gate    *auth.Gate
	Storage handlers.Pinger

	// Optional: last corpus audit, reported by /healthz.
	Audits handlers.AuditSource

	// Optional: Prometheus exposition, mounted at MetricsPath.
	MetricsHandler http.Handler
	MetricsPath    string

	Recorder metrics.Recorder
	Logger   *slog.Logger
}
