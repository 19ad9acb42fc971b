package tiling

import "github.com/1broseidon/twm/internal/geometry"

// WindowID identifies a window known to twm.
type WindowID uint32

// WindowHandle is the platform's handle for a window. The core never
// interprets it; on X11 it is the window XID.
type WindowHandle uint32

// Window is an OS-level window as it was before any layout was applied.
type Window struct {
	ID           WindowID      `json:"id"`
	Handle       WindowHandle  `json:"handle"`
	OriginalBBox geometry.BBox `json:"original_bbox"`
}

// TileID identifies a tile within a workspace.
type TileID uint32

// Tile is a window placed inside a workspace. BBox is only written by a
// layout pass.
//
// Tiles do not track which ids are in use; callers must keep ids unique
// within a workspace.
type Tile struct {
	ID     TileID        `json:"id"`
	BBox   geometry.BBox `json:"bbox"`
	Window Window        `json:"window"`
}

// NewTile creates a tile for window. The tile starts at the window's
// original geometry until the next layout pass.
func NewTile(id TileID, window Window) Tile {
	return Tile{ID: id, BBox: window.OriginalBBox, Window: window}
}

// DisplayID identifies a monitor.
type DisplayID uint32

// Display is a monitor's usable area.
type Display struct {
	ID   DisplayID     `json:"id"`
	BBox geometry.BBox `json:"bbox"`
}
