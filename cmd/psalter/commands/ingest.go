package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/psalter/internal/config"
	"git.home.luguber.info/inful/psalter/internal/corpus"
	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
	"git.home.luguber.info/inful/psalter/internal/logfields"
	"git.home.luguber.info/inful/psalter/internal/metrics"
)

// IngestCmd implements the 'ingest' command.
type IngestCmd struct {
	SourceDir string `short:"s" help:"Directory holding the psalm pages (overrides ingest.source_dir)"`
	Documents int    `short:"n" help:"Number of psalms to ingest (overrides ingest.documents)"`
	// Written in the node_exporter textfile format when set.
	MetricsTextfile string `name:"metrics-textfile" help:"Write ingestion metrics to this file"`
}

func (c *IngestCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := root.Loaded()
	if c.SourceDir != "" {
		cfg.Ingest.SourceDir = c.SourceDir
	}
	if c.Documents > 0 {
		cfg.Ingest.Documents = c.Documents
	}

	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)

	start := time.Now()
	err := ingest(ctx, cfg, g.Logger, recorder)
	recorder.ObserveIngestDuration(time.Since(start))
	if err != nil {
		recorder.IncIngestResult(metrics.ResultFatal)
	} else {
		recorder.IncIngestResult(metrics.ResultSuccess)
	}

	if c.MetricsTextfile != "" {
		if werr := prom.WriteToTextfile(c.MetricsTextfile, reg); werr != nil {
			g.Logger.Warn("Failed to write metrics textfile",
				slog.String("path", c.MetricsTextfile), slog.String("error", werr.Error()))
		}
	}
	return err
}

func ingest(ctx context.Context, cfg *config.Config, logger *slog.Logger, recorder metrics.Recorder) error {
	logger.Info("Starting ingestion",
		slog.String("source_dir", cfg.Ingest.SourceDir),
		slog.Int("documents", cfg.Ingest.Documents))

	if info, err := os.Stat(cfg.Ingest.SourceDir); err != nil || !info.IsDir() {
		b := errors.IngestionError("source directory not readable").
			WithContext("source_dir", cfg.Ingest.SourceDir)
		if err != nil {
			b = b.WithCause(err)
		}
		return b.Build()
	}

	st, err := connectAndMigrate(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	builder := corpus.NewBuilder(cfg.Ingest.Documents, cfg.Ingest.Meter, cfg.Ingest.MediaPrefix)
	builder.Logger = logger
	batch, err := builder.Build(ctx, corpus.NewFSSource(os.DirFS(cfg.Ingest.SourceDir), cfg.Ingest.FilePattern))
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			if src, ok := ce.Context().GetString(logfields.KeySource); ok {
				logger.Error("Ingestion halted, nothing was loaded", logfields.Source(src))
			}
		}
		return err
	}

	if err := st.Load(ctx, batch); err != nil {
		return err
	}

	report, err := st.Audit(ctx, cfg.Ingest.Documents)
	if err != nil {
		return err
	}
	recorder.SetCorpusSize(report.Psalms, report.Stanzas)
	recorder.SetAuditViolations(len(report.Violations))
	if !report.OK() {
		return errors.IngestionError("corpus failed audit after load").
			WithContext("violations", len(report.Violations)).
			WithContext("missing", report.Missing).
			Build()
	}

	logger.Info("Ingestion complete",
		slog.Int("psalms", report.Psalms),
		slog.Int("stanzas", report.Stanzas))
	return nil
}
