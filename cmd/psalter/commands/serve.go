package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/psalter/internal/auth"
	"git.home.luguber.info/inful/psalter/internal/cache"
	"git.home.luguber.info/inful/psalter/internal/catalog"
	"git.home.luguber.info/inful/psalter/internal/config"
	"git.home.luguber.info/inful/psalter/internal/daemon"
	"git.home.luguber.info/inful/psalter/internal/logfields"
	"git.home.luguber.info/inful/psalter/internal/metrics"
	"git.home.luguber.info/inful/psalter/internal/server/httpserver"
	"git.home.luguber.info/inful/psalter/internal/store"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Address string `short:"a" help:"Listen address (overrides http.address)"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg := root.Loaded()
	if s.Address != "" {
		cfg.HTTP.Address = s.Address
	}
	return RunServe(cfg, g.Logger)
}

// RunServe serves the API until SIGINT or SIGTERM.
func RunServe(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Serving never waits for storage; an unreachable database fails startup.
	st, err := store.Open(ctx, cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	var (
		recorder       metrics.Recorder = metrics.NoopRecorder{}
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewPrometheusRecorder(reg)
		metricsHandler = metrics.HTTPHandler(reg)
	}

	listCache, closeCache := openCache(ctx, cfg.Cache, logger)
	defer closeCache()

	svc := catalog.NewService(st, listCache).WithRecorder(recorder).WithLogger(logger)
	gate := auth.NewGate(st, cfg.Auth.Header, cfg.Auth.QueryParam).WithRecorder(recorder).WithLogger(logger)

	auditor := daemon.NewAuditor(st, cfg.Ingest.Documents, recorder, logger)
	srv := httpserver.New(cfg.HTTP, httpserver.Options{
		Catalog:        svc,
		Gate:           gate,
		Storage:        st,
		Audits:         auditor,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
		Recorder:       recorder,
		Logger:         logger,
	})

	d, err := daemon.New(srv, auditor, cfg.Metrics.AuditInterval.Std(), logger)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}
	if err := d.Start(ctx); err != nil {
		return err
	}

	logger.Info("Serving, waiting for shutdown signal...")
	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout.Std())
	defer stopCancel()
	if err := d.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop: %w", err)
	}
	logger.Info("Stopped")
	return nil
}

// openCache connects the NATS list cache. When NATS is unreachable the
// process keeps an in-memory cache with the same TTL.
func openCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (cache.Store, func()) {
	if !cfg.Enabled {
		logger.Info("List cache disabled")
		return nil, func() {}
	}
	nc, err := cache.NewNATSStore(ctx, cfg)
	if err != nil {
		logger.Warn("NATS cache unavailable, using in-memory cache", logfields.Error(err))
		return cache.NewMemoryStore(cfg.TTL.Std()), func() {}
	}
	return nc, func() { _ = nc.Close() }
}
