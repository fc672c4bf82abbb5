package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/1broseidon/winsnap/internal/platform"
)

// DisplayLister returns the currently connected displays.
type DisplayLister func() ([]platform.Display, error)

// RestoreFunc restores a layout slot.
type RestoreFunc func(id int) (bool, error)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	// AutoRestoreSlot is restored whenever the display set changes. A
	// negative value disables auto-restore.
	AutoRestoreSlot int
	Logger          *slog.Logger
}

// Reconciler periodically checks the display configuration and re-applies a
// layout after monitors are connected, disconnected or rearranged.
type Reconciler struct {
	interval    time.Duration
	slot        int
	listDisplay DisplayLister
	restore     RestoreFunc
	logger      *slog.Logger
	last        string
	seen        bool
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, listDisplays DisplayLister, restore RestoreFunc) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:    interval,
		slot:        cfg.AutoRestoreSlot,
		listDisplay: listDisplays,
		restore:     restore,
		logger:      logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval, "auto_restore_slot", r.slot)
	r.reconcile()

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

// reconcile performs a single reconciliation pass. It reports whether the
// display set changed since the previous pass.
func (r *Reconciler) reconcile() bool {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	displays, err := r.listDisplay()
	if err != nil {
		r.logger.Error("reconciler: failed to list displays", "error", err)
		return false
	}

	key := displayKey(displays)
	if !r.seen {
		r.seen = true
		r.last = key
		return false
	}
	if key == r.last {
		return false
	}
	r.last = key

	r.logger.Info("reconciler: display configuration changed", "displays", key)
	if r.slot < 0 {
		return true
	}
	found, err := r.restore(r.slot)
	switch {
	case err != nil:
		r.logger.Warn("reconciler: auto-restore failed", "slot", r.slot, "error", err)
	case !found:
		r.logger.Debug("reconciler: auto-restore slot is empty", "slot", r.slot)
	}
	return true
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() bool {
	return r.reconcile()
}

// displayKey identifies a display arrangement by names and geometry.
func displayKey(displays []platform.Display) string {
	parts := make([]string, 0, len(displays))
	for _, d := range displays {
		b := d.Bounds
		parts = append(parts, fmt.Sprintf("%s@%d,%d+%dx%d", d.Name, b.X, b.Y, b.Width, b.Height))
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}
