package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const minSweepInterval = 5 * time.Minute

// Daemon runs the sweep on a fixed interval until the context is cancelled.
type Daemon struct {
	orchestrator *Orchestrator
	interval     time.Duration
	logger       *zap.Logger
}

func NewDaemon(o *Orchestrator, interval time.Duration, logger *zap.Logger) *Daemon {
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	return &Daemon{orchestrator: o, interval: interval, logger: logger}
}

// Start blocks, running one sweep immediately and then one per tick. It
// returns when the context is cancelled.
func (d *Daemon) Start(ctx context.Context) {
	d.logger.Info("sweep daemon started", zap.Duration("interval", d.interval))

	d.sweep(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("sweep daemon stopped")
			return
		case <-ticker.C:
			d.sweep(ctx)
		}
	}
}

func (d *Daemon) sweep(ctx context.Context) {
	if _, err := d.orchestrator.Run(ctx); err != nil {
		d.logger.Error("sweep failed", zap.Error(err))
	}
}
