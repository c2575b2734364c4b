// Package httpserver wires the psalter routes onto a net/http server.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"git.home.luguber.info/inful/psalter/internal/config"
	derrors "git.home.luguber.info/inful/psalter/internal/foundation/errors"
	"git.home.luguber.info/inful/psalter/internal/server/handlers"
	smw "git.home.luguber.info/inful/psalter/internal/server/middleware"
)

// Server manages the API listener.
type Server struct {
	srv          *http.Server
	ln           net.Listener
	cfg          config.HTTPConfig
	opts         Options
	errorAdapter *derrors.HTTPErrorAdapter
	logger       *slog.Logger

	psalmHandlers      *handlers.PsalmHandlers
	userHandlers       *handlers.UserHandlers
	monitoringHandlers *handlers.MonitoringHandlers

	// middleware chain
	mchain func(http.Handler) http.Handler
}

// New constructs a new HTTP server wiring instance.
func New(cfg config.HTTPConfig, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		cfg:          cfg,
		opts:         opts,
		errorAdapter: derrors.NewHTTPErrorAdapter(opts.Logger),
		logger:       opts.Logger,
	}

	s.psalmHandlers = handlers.NewPsalmHandlers(opts.Catalog, s.errorAdapter)
	s.userHandlers = handlers.NewUserHandlers(opts.Gate, s.errorAdapter)
	s.monitoringHandlers = handlers.NewMonitoringHandlers(opts.Storage, s.errorAdapter).WithAudits(opts.Audits)

	s.mchain = smw.Chain(smw.Options{
		Logger:          opts.Logger,
		Adapter:         s.errorAdapter,
		Recorder:        opts.Recorder,
		CORSAllowOrigin: cfg.CORSAllowOrigin,
		RateLimit:       cfg.RateLimit,
		RateBurst:       cfg.RateBurst,
	})
	return s
}

// Handler returns the fully wrapped route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	gated := func(h http.HandlerFunc) http.Handler {
		return s.opts.Gate.Require(s.errorAdapter, h)
	}
	mux.Handle("GET /api/psalms", gated(s.psalmHandlers.HandleList))
	mux.Handle("GET /api/psalms/{$}", gated(s.psalmHandlers.HandleList))
	mux.Handle("GET /api/psalms/{number}", gated(s.psalmHandlers.HandleGet))
	mux.Handle("GET /api/psalms/{number}/stanza/{stanza}", gated(s.psalmHandlers.HandleStanza))
	mux.Handle("GET /api/psalms/{number}/stanzas", gated(s.psalmHandlers.HandleStanzas))
	mux.HandleFunc("POST /api/validate-user", s.userHandlers.HandleValidateUser)

	mux.HandleFunc("GET /healthz", s.monitoringHandlers.HandleHealthCheck)
	if s.opts.MetricsHandler != nil {
		path := s.opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, s.opts.MetricsHandler)
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.errorAdapter.WriteErrorResponse(w, r, derrors.NotFoundError("Not found").Build())
	})

	return s.mchain(mux)
}

// Start binds the listener and serves in the background. Binding happens
// before Start returns so address conflicts surface immediately.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Address)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryRuntime, "http startup failed").
			WithContext("address", s.cfg.Address).
			Fatal().
			Build()
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout.Std(),
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("API server error", slog.String("error", err.Error()))
		}
	}()

	s.logger.Info("HTTP server started", slog.String("address", ln.Addr().String()))
	return nil
}

// Addr reports the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Stop gracefully shuts the server down, waiting at most the configured
// shutdown timeout for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if d := s.cfg.ShutdownTimeout.Std(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
