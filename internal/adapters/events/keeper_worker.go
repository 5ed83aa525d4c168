package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tymchak1/flow-roles/internal/application"
)

// KeeperWorker is the external trigger for timed-role expiry. Each tick it
// probes for lapsed activity roles and sweeps the candidates the probe
// returned. The probe is read-only and the sweep re-validates every
// candidate, so a tick that races a deposit refresh is harmless.
type KeeperWorker struct {
	logger   *slog.Logger
	service  *application.Service
	interval time.Duration
}

func NewKeeperWorker(logger *slog.Logger, service *application.Service, interval time.Duration) *KeeperWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &KeeperWorker{logger: logger, service: service, interval: interval}
}

func (w *KeeperWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if err := w.tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "keeper tick failed",
				"module", "events.keeper_worker",
				"layer", "adapter",
				"operation", "tick",
				"outcome", "failure",
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *KeeperWorker) tick(ctx context.Context) error {
	probe, err := w.service.Probe(ctx)
	if err != nil {
		return err
	}
	if !probe.WorkNeeded {
		return nil
	}
	swept, err := w.service.Sweep(ctx, probe.Candidates)
	if err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "keeper sweep completed",
		"module", "events.keeper_worker",
		"layer", "adapter",
		"operation", "tick",
		"outcome", "success",
		"candidates", len(probe.Candidates),
		"swept", len(swept),
	)
	return nil
}
