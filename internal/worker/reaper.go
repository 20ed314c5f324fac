// Package worker hosts the background expiry sweep that reclaims abandoned
// seat holds.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// HoldReleaser releases every hold whose TTL has elapsed and reports how many
// seats were reclaimed.
type HoldReleaser interface {
	ReleaseExpiredHolds(ctx context.Context) (int, error)
}

// Reaper periodically converts expired holds back to Available. The sweep is
// idempotent and transactional, so running it concurrently with user traffic
// or with another replica cannot corrupt state; a failed cycle is logged and
// retried on the next tick.
type Reaper struct {
	releaser HoldReleaser
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewReaper(releaser HoldReleaser, logger *slog.Logger, interval time.Duration) *Reaper {
	return &Reaper{
		releaser: releaser,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is cancelled or Stop is called.
func (r *Reaper) Start(ctx context.Context) {
	r.logger.Info("starting hold reaper", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping hold reaper", "reason", "context cancelled")
			return
		case <-r.stopCh:
			r.logger.Info("stopping hold reaper", "reason", "stop requested")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// Stop signals the loop to exit and waits for the in-flight sweep to finish.
func (r *Reaper) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *Reaper) sweep(ctx context.Context) {
	released, err := r.releaser.ReleaseExpiredHolds(ctx)
	if err != nil {
		// Missed sweeps only delay reclamation; the next tick retries.
		r.logger.Error("hold sweep failed", "released", released, "error", err)
		return
	}

	if released > 0 {
		r.logger.Info("released expired holds", "count", released)
	}
}
