package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/twm/internal/tiling"
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically matches the tiled windows against the windows the
// window system reports, untiling closed windows and tiling new ones.
type Reconciler struct {
	interval time.Duration
	twm      *Twm
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, twm *Twm) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Reconciler{
		interval: interval,
		twm:      twm,
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

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	display, expected, ok := r.twm.trackedWindows()
	if !ok {
		return
	}

	actual, err := r.twm.backend.ListWindows(display)
	if err != nil {
		r.logger.Error("reconciler: failed to list windows", "error", err)
		return
	}

	actualSet := make(map[tiling.WindowHandle]bool, len(actual))
	for _, h := range actual {
		actualSet[h] = true
	}

	for _, h := range expected {
		if actualSet[h] {
			delete(actualSet, h)
			continue
		}
		r.logger.Info("reconciler: window vanished", "handle", h)
		if _, err := r.twm.RemoveWindow(h); err != nil {
			r.logger.Warn("reconciler: failed to untile window", "handle", h, "error", err)
		}
	}

	// Keep the backend's order for new windows.
	for _, h := range actual {
		if !actualSet[h] {
			continue
		}
		r.logger.Info("reconciler: new window", "handle", h)
		if err := r.twm.AddWindow(h); err != nil {
			r.logger.Warn("reconciler: failed to tile window", "handle", h, "error", err)
		}
	}
}

// trackedWindows returns the focused workspace's display and the handles
// tiled on it.
func (t *Twm) trackedWindows() (tiling.Display, []tiling.WindowHandle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ws := t.manager.FocusedWorkspace()
	if ws == nil {
		return tiling.Display{}, nil, false
	}
	tiles := ws.Tiles()
	handles := make([]tiling.WindowHandle, len(tiles))
	for i, tile := range tiles {
		handles[i] = tile.Window.Handle
	}
	return ws.Display, handles, true
}
