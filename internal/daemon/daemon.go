// Package daemon runs the long-lived serve process: the API listener plus the
// periodic corpus audit.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Server is the listener lifecycle the daemon drives.
type Server interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Daemon owns the server and scheduler.
type Daemon struct {
	server        Server
	auditor       *Auditor
	auditInterval time.Duration
	scheduler     *Scheduler
	logger        *slog.Logger
}

// New builds a Daemon. A nil auditor or non-positive interval disables the
// periodic audit.
func New(server Server, auditor *Auditor, auditInterval time.Duration, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sched, err := NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Daemon{
		server:        server,
		auditor:       auditor,
		auditInterval: auditInterval,
		scheduler:     sched,
		logger:        logger,
	}, nil
}

// Start audits once, starts the server and schedules further audits.
func (d *Daemon) Start(ctx context.Context) error {
	if d.auditor != nil {
		if _, err := d.auditor.Run(ctx); err != nil {
			d.logger.Warn("Initial corpus audit failed; serving anyway")
		}
	}

	if err := d.server.Start(ctx); err != nil {
		return err
	}

	if d.auditor != nil && d.auditInterval > 0 {
		if _, err := d.scheduler.ScheduleEvery("corpus-audit", d.auditInterval, func() {
			// Audit under the daemon context so shutdown cancels a slow audit.
			_, _ = d.auditor.Run(ctx)
		}); err != nil {
			_ = d.server.Stop(ctx)
			return fmt.Errorf("schedule corpus audit: %w", err)
		}
	}
	d.scheduler.Start(ctx)
	return nil
}

// Stop shuts the server down and then the scheduler.
func (d *Daemon) Stop(ctx context.Context) error {
	var errs []error
	if err := d.server.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := d.scheduler.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("scheduler shutdown: %w", err))
	}
	return errors.Join(errs...)
}
