// Package tiling implements the arrangement core of twm: tiles, workspaces,
// the workspace manager and the pluggable layouts that compute tile geometry.
//
// Nothing in this package talks to a window system or blocks. Callers are
// expected to serialize access to a Manager themselves.
package tiling

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/1broseidon/twm/internal/geometry"
)

// Meta describes a layout.
type Meta struct {
	Name string `json:"name"`
}

// UpdateInfo is the transient view a layout pass works on.
type UpdateInfo struct {
	// Tiles are rewritten in place.
	Tiles []Tile
	// WorkspaceBBox bounds every tile the layout produces.
	WorkspaceBBox geometry.BBox
	// FocusedTileID is nil when no tile is focused.
	FocusedTileID *TileID
}

// Layout computes tile geometry for a workspace.
//
// A layout starts dirty. Layout is a no-op while the layout is clean; a dirty
// layout recomputes every tile's bbox and becomes clean. Laying out zero
// tiles also cleans the layout without touching anything.
type Layout interface {
	Metadata() Meta
	Invalidate()
	IsDirty() bool
	Layout(info *UpdateInfo)
}

// SidedTilePolicy selects which tile gets the prominent region of a layout.
type SidedTilePolicy string

const (
	// SidedByNewest picks the tile with the highest id.
	SidedByNewest SidedTilePolicy = "newest"
	// SidedByFocus picks the focused tile and falls back to SidedByNewest.
	SidedByFocus SidedTilePolicy = "focused"
)

// Valid reports whether p is a known policy. The empty policy is treated as
// SidedByNewest.
func (p SidedTilePolicy) Valid() bool {
	switch p {
	case "", SidedByNewest, SidedByFocus:
		return true
	}
	return false
}

// Options parameterize layout construction through the registry.
type Options struct {
	Side      geometry.Direction
	SidedTile SidedTilePolicy
	Strict    bool
}

// Constructor builds a fresh, dirty layout.
type Constructor func(Options) Layout

const (
	KindSided  = "sided"
	KindMiddle = "middle"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Constructor)
)

// RegisterLayout makes a layout constructible by kind. It panics if kind is
// empty, ctor is nil or kind is already registered.
func RegisterLayout(kind string, ctor Constructor) {
	kind = strings.ToLower(strings.TrimSpace(kind))

	registryMu.Lock()
	defer registryMu.Unlock()

	if kind == "" {
		panic("tiling: RegisterLayout with empty kind")
	}
	if ctor == nil {
		panic("tiling: RegisterLayout constructor is nil for " + kind)
	}
	if _, dup := registry[kind]; dup {
		panic("tiling: RegisterLayout called twice for " + kind)
	}
	registry[kind] = ctor
}

// NewLayout constructs a registered layout.
func NewLayout(kind string, opts Options) (Layout, error) {
	registryMu.RLock()
	ctor, ok := registry[strings.ToLower(strings.TrimSpace(kind))]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown layout %q (available: %s)", kind, strings.Join(LayoutKinds(), ", "))
	}
	return ctor(opts), nil
}

// LayoutKinds returns the registered layout kinds in sorted order.
func LayoutKinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

var logger = slog.New(slog.DiscardHandler)

// SetLogger sets the logger layout passes report to. It must be called before
// any layout runs; nil is ignored.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// selectedIndex returns the index of the tile that takes a layout's
// prominent region.
func selectedIndex(tiles []Tile, focused *TileID, policy SidedTilePolicy) int {
	if policy == SidedByFocus && focused != nil {
		for i := range tiles {
			if tiles[i].ID == *focused {
				return i
			}
		}
	}
	return newestIndex(tiles)
}

// newestIndex returns the index of the tile with the highest id. On equal
// ids the later tile wins.
func newestIndex(tiles []Tile) int {
	idx := 0
	for i := 1; i < len(tiles); i++ {
		if tiles[i].ID >= tiles[idx].ID {
			idx = i
		}
	}
	return idx
}
