package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/multibox/internal/platform"
)

// DefaultReconcileInterval is how often controllers are checked for windows
// that have gone away.
const DefaultReconcileInterval = 5 * time.Second

// Pruner disconnects controllers whose window no longer exists.
type Pruner interface {
	PruneDead() []platform.WindowID
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically clears dead windows from their controllers so
// handles never dangle.
type Reconciler struct {
	interval time.Duration
	pruner   Pruner
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, pruner Pruner) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		pruner:   pruner,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() []platform.WindowID {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	gone := r.pruner.PruneDead()
	for _, w := range gone {
		r.logger.Info("reconciler: window closed, controller cleared",
			"window_id", fmt.Sprintf("0x%x", uint32(w)))
	}
	return gone
}

// ReconcileNow triggers an immediate reconciliation pass and returns the
// windows that were cleared.
func (r *Reconciler) ReconcileNow() []platform.WindowID {
	return r.reconcile()
}
