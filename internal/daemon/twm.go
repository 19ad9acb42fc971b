// Package daemon holds the running window manager: one workspace manager
// guarded by a reader/writer lock, the operations hotkeys and IPC invoke on
// it, and the periodic reconciliation with the window system.
package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/1broseidon/twm/internal/config"
	"github.com/1broseidon/twm/internal/metrics"
	"github.com/1broseidon/twm/internal/platform"
	"github.com/1broseidon/twm/internal/tiling"
)

// Options configure a Twm.
type Options struct {
	Config  *config.Config
	Backend platform.Backend
	Logger  *slog.Logger
	// Level, when set, follows the config's log_level on reload.
	Level   *slog.LevelVar
	Metrics *metrics.Metrics
	// LoadConfig is called by Reload. Without it Reload fails.
	LoadConfig func() (*config.Config, error)
	// OnConfig is called after a new config has been applied.
	OnConfig func(*config.Config)
}

// Twm is the running window manager.
//
// Queries take the read lock and mutations the write lock. Window system
// calls happen after the lock is released.
type Twm struct {
	mu              sync.RWMutex
	manager         *tiling.Manager
	cfg             *config.Config
	kinds           map[tiling.WorkspaceID]string
	lastWorkspaceID tiling.WorkspaceID
	docksHidden     bool

	backend    platform.Backend
	renderer   *platform.Renderer
	logger     *slog.Logger
	level      *slog.LevelVar
	metrics    *metrics.Metrics
	loadConfig func() (*config.Config, error)
	onConfig   func(*config.Config)

	shutdownOnce sync.Once

	// generation counts layout passes per workspace and is guarded by mu.
	// rendered is the newest generation moved onto real windows, guarded by
	// renderMu.
	generation map[tiling.WorkspaceID]uint64
	renderMu   sync.Mutex
	rendered   map[tiling.WorkspaceID]uint64
}

// New creates a Twm with no workspaces. Call Init to discover the display.
func New(opts Options) *Twm {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	t := &Twm{
		manager:    tiling.NewManager(),
		cfg:        cfg,
		kinds:      make(map[tiling.WorkspaceID]string),
		backend:    opts.Backend,
		renderer:   platform.NewRenderer(opts.Backend, logger),
		logger:     logger,
		level:      opts.Level,
		metrics:    opts.Metrics,
		loadConfig: opts.LoadConfig,
		onConfig:   opts.OnConfig,
		generation: make(map[tiling.WorkspaceID]uint64),
		rendered:   make(map[tiling.WorkspaceID]uint64),
	}
	t.setLevel(cfg.LogLevel)
	return t
}

// Init hides the docks when configured to, creates a workspace on the
// primary display and adopts the windows already on it. Docks hidden here
// are shown again when Init fails.
func (t *Twm) Init() (err error) {
	display, err := platform.DiscoverDisplay(t.backend)
	if err != nil {
		return err
	}
	t.logger.Info("discovered display", "id", display.ID, "bbox", display.BBox.String())

	t.mu.RLock()
	show := t.cfg.Taskbar.Show
	t.mu.RUnlock()
	if !show {
		t.setDocks(false)
		defer func() {
			if err != nil {
				t.setDocks(true)
			}
		}()
	}

	if _, err := t.NewWorkspace(display); err != nil {
		return err
	}

	handles, err := t.backend.ListWindows(display)
	if err != nil {
		return fmt.Errorf("list windows: %w", err)
	}
	for _, h := range handles {
		if err := t.AddWindow(h); err != nil {
			t.logger.Warn("skipping window", "handle", h, "error", err)
		}
	}
	return nil
}

// Shutdown restores the docks if Init hid them. Only the first call has an
// effect.
func (t *Twm) Shutdown() {
	t.shutdownOnce.Do(func() {
		t.mu.RLock()
		hidden := t.docksHidden
		t.mu.RUnlock()
		if hidden {
			t.setDocks(true)
		}
		t.logger.Info("twm shut down")
	})
}

// NewWorkspace adds a workspace on display using the configured layout and
// focuses it.
func (t *Twm) NewWorkspace(display tiling.Display) (tiling.WorkspaceID, error) {
	var id tiling.WorkspaceID
	err := t.mutate(func() (*tiling.Workspace, error) {
		layout, err := t.cfg.NewLayout()
		if err != nil {
			return nil, err
		}

		t.lastWorkspaceID++
		id = t.lastWorkspaceID
		ws := tiling.NewWorkspace(id, display)
		ws.SetLayout(layout)
		t.kinds[id] = t.cfg.Layout.Kind

		t.manager.AddWorkspace(ws)
		t.manager.Focus(id)
		t.logger.Debug("workspace created", "workspace", id, "layout", layout.Metadata().Name)
		return ws, nil
	})
	return id, err
}

// AddWindow tiles the window behind handle in the focused workspace. A
// window that is already tiled is left alone.
func (t *Twm) AddWindow(handle tiling.WindowHandle) error {
	window, err := platform.WindowFromHandle(t.backend, handle)
	if err != nil {
		return err
	}

	return t.mutate(func() (*tiling.Workspace, error) {
		ws := t.manager.FocusedWorkspace()
		if ws == nil {
			return nil, ErrNotAvailable
		}
		if owner, _ := t.findHandleLocked(handle); owner != nil {
			return nil, nil
		}

		tile := tiling.NewTile(ws.NextTileID(), window)
		ws.AddTile(tile)
		ws.ActiveLayout().Invalidate()
		t.logger.Info("window tiled", "workspace", ws.ID, "tile", tile.ID, "handle", handle)
		return ws, nil
	})
}

// RemoveWindow untiles the window behind handle and reports whether it was
// tiled.
func (t *Twm) RemoveWindow(handle tiling.WindowHandle) (bool, error) {
	removed := false
	err := t.mutate(func() (*tiling.Workspace, error) {
		ws, id := t.findHandleLocked(handle)
		if ws == nil {
			return nil, nil
		}
		ws.RemoveTileByID(id)
		ws.ActiveLayout().Invalidate()
		removed = true
		t.logger.Info("window untiled", "workspace", ws.ID, "tile", id, "handle", handle)
		return ws, nil
	})
	return removed, err
}

// Relayout recomputes and re-applies the focused workspace's layout.
func (t *Twm) Relayout() error {
	return t.mutate(func() (*tiling.Workspace, error) {
		ws := t.manager.FocusedWorkspace()
		if ws == nil {
			return nil, ErrNotAvailable
		}
		ws.ActiveLayout().Invalidate()
		return ws, nil
	})
}

// CycleSide moves the sided region of the focused workspace to the next
// side.
func (t *Twm) CycleSide() error {
	return t.mutate(func() (*tiling.Workspace, error) {
		ws := t.manager.FocusedWorkspace()
		if ws == nil {
			return nil, ErrNotAvailable
		}
		sided, ok := ws.ActiveLayout().(*tiling.SidedLayout)
		if !ok {
			return nil, fmt.Errorf("%s has no side to cycle", ws.ActiveLayout().Metadata().Name)
		}
		sided.SetSide(sided.Side.Next())
		t.logger.Debug("side cycled", "workspace", ws.ID, "side", sided.Side.String())
		return ws, nil
	})
}

// FocusNext focuses the tile after the focused one, wrapping around.
func (t *Twm) FocusNext() error {
	var handle tiling.WindowHandle
	err := t.mutate(func() (*tiling.Workspace, error) {
		ws := t.manager.FocusedWorkspace()
		if ws == nil {
			return nil, ErrNotAvailable
		}
		tiles := ws.Tiles()
		if len(tiles) == 0 {
			return nil, nil
		}

		next := 0
		if id, ok := ws.FocusedTileID(); ok {
			cur := slices.IndexFunc(tiles, func(tile tiling.Tile) bool { return tile.ID == id })
			next = (cur + 1) % len(tiles)
		}
		ws.Focus(tiles[next].ID)
		handle = tiles[next].Window.Handle

		if t.cfg.Layout.SidedTile == tiling.SidedByFocus {
			ws.ActiveLayout().Invalidate()
		}
		return ws, nil
	})
	if err != nil || handle == 0 {
		return err
	}
	if err := t.backend.FocusWindow(handle); err != nil {
		t.logger.Warn("failed to focus window", "handle", handle, "error", err)
	}
	return nil
}

// SwapLayout switches the focused workspace to the next registered layout.
func (t *Twm) SwapLayout() error {
	return t.mutate(func() (*tiling.Workspace, error) {
		ws := t.manager.FocusedWorkspace()
		if ws == nil {
			return nil, ErrNotAvailable
		}

		kinds := tiling.LayoutKinds()
		next := kinds[(slices.Index(kinds, t.kinds[ws.ID])+1)%len(kinds)]
		layout, err := tiling.NewLayout(next, t.cfg.LayoutOptions())
		if err != nil {
			return nil, err
		}
		ws.SetLayout(layout)
		t.kinds[ws.ID] = next
		t.logger.Info("layout swapped", "workspace", ws.ID, "layout", layout.Metadata().Name)
		return ws, nil
	})
}

// Dispatch runs a hotkey action.
func (t *Twm) Dispatch(action config.Action) error {
	switch action {
	case config.ActionRelayout:
		return t.Relayout()
	case config.ActionCycleSide:
		return t.CycleSide()
	case config.ActionFocusNext:
		return t.FocusNext()
	case config.ActionSwapLayout:
		return t.SwapLayout()
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

// Reload loads the config again and applies it.
func (t *Twm) Reload() error {
	if t.loadConfig == nil {
		return errors.New("reload: no config source")
	}
	cfg, err := t.loadConfig()
	t.metrics.RecordReload(err)
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	return t.ApplyConfig(cfg)
}

// ApplyConfig switches to cfg. Workspaces get a fresh layout when the layout
// section changed, and the docks follow taskbar.show.
func (t *Twm) ApplyConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	var old *config.Config
	err := t.mutate(func() (*tiling.Workspace, error) {
		old = t.cfg
		t.cfg = cfg
		t.setLevel(cfg.LogLevel)

		if old.Layout != cfg.Layout || old.StrictGeometry != cfg.StrictGeometry {
			for _, ws := range t.manager.Workspaces() {
				layout, err := cfg.NewLayout()
				if err != nil {
					return nil, err
				}
				ws.SetLayout(layout)
				t.kinds[ws.ID] = cfg.Layout.Kind
			}
			t.logger.Info("layout config changed", "kind", cfg.Layout.Kind, "side", cfg.Layout.Side.String())
		}
		return t.manager.FocusedWorkspace(), nil
	})
	if err != nil {
		return err
	}

	if old.Taskbar.Show != cfg.Taskbar.Show {
		t.setDocks(cfg.Taskbar.Show)
	}
	if t.onConfig != nil {
		t.onConfig(cfg)
	}
	return nil
}

// Config returns the config in effect. It must not be modified.
func (t *Twm) Config() *config.Config {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cfg
}

// mutate runs fn under the write lock. When fn returns a workspace its
// layout is run, and the resulting tiles are rendered once the lock is
// released. Renders are serialized, and a pass older than one already
// rendered for the same workspace is dropped.
func (t *Twm) mutate(fn func() (*tiling.Workspace, error)) error {
	ws, gen, tiles, err := func() (tiling.WorkspaceID, uint64, []tiling.Tile, error) {
		t.mu.Lock()
		defer t.mu.Unlock()
		defer t.updateGaugesLocked()

		ws, err := fn()
		if err != nil || ws == nil {
			return 0, 0, nil, err
		}
		tiles, ok := t.layoutLocked(ws)
		if !ok {
			return 0, 0, nil, nil
		}
		t.generation[ws.ID]++
		return ws.ID, t.generation[ws.ID], tiles, nil
	}()
	if err != nil || tiles == nil {
		return err
	}

	t.renderMu.Lock()
	defer t.renderMu.Unlock()
	if gen <= t.rendered[ws] {
		t.logger.Debug("dropping stale layout", "workspace", ws, "generation", gen)
		return nil
	}
	t.rendered[ws] = gen

	failed := t.renderer.RenderTiles(ws, tiles)
	t.metrics.AddRenderFailures(failed)
	return nil
}

// layoutLocked runs ws's layout and returns the tiles to render. It returns
// false when nothing was computed.
func (t *Twm) layoutLocked(ws *tiling.Workspace) ([]tiling.Tile, bool) {
	layout := ws.ActiveLayout()
	if !layout.IsDirty() {
		return nil, false
	}

	start := time.Now()
	ws.Layout()
	t.metrics.ObserveLayout(layout.Metadata().Name, time.Since(start))

	// Still dirty means the layout rejected the geometry.
	if layout.IsDirty() || ws.Len() == 0 {
		return nil, false
	}
	return ws.Tiles(), true
}

func (t *Twm) findHandleLocked(handle tiling.WindowHandle) (*tiling.Workspace, tiling.TileID) {
	for _, ws := range t.manager.Workspaces() {
		for _, tile := range ws.Tiles() {
			if tile.Window.Handle == handle {
				return ws, tile.ID
			}
		}
	}
	return nil, 0
}

func (t *Twm) updateGaugesLocked() {
	tiles := 0
	if ws := t.manager.FocusedWorkspace(); ws != nil {
		tiles = ws.Len()
	}
	t.metrics.SetCounts(tiles, t.manager.Len())
}

func (t *Twm) setDocks(visible bool) {
	if err := t.backend.SetDocksVisible(visible); err != nil {
		t.logger.Warn("failed to change dock visibility", "visible", visible, "error", err)
		return
	}
	t.mu.Lock()
	t.docksHidden = !visible
	t.mu.Unlock()
}

func (t *Twm) setLevel(level string) {
	if t.level == nil {
		return
	}
	t.level.Set(ParseLevel(level))
}

// ParseLevel maps a config log_level to a slog level. Unknown values map to
// info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
