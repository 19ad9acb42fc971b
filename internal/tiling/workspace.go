package tiling

import (
	"fmt"
	"slices"

	"github.com/1broseidon/twm/internal/geometry"
)

// WorkspaceID identifies a workspace within a Manager.
type WorkspaceID uint32

// Workspace is an ordered set of tiles bound to one display with one active
// layout.
type Workspace struct {
	ID      WorkspaceID
	Display Display

	tiles   []Tile
	layout  Layout
	focused *TileID
}

// NewWorkspace creates an empty workspace on display using a sided layout on
// the left.
func NewWorkspace(id WorkspaceID, display Display) *Workspace {
	return &Workspace{
		ID:      id,
		Display: display,
		layout:  NewSidedLayout(geometry.Left),
	}
}

// ActiveLayout returns the workspace's layout. It is never nil.
func (w *Workspace) ActiveLayout() Layout {
	return w.layout
}

// SetLayout replaces the active layout and marks it dirty. It panics on a nil
// layout.
func (w *Workspace) SetLayout(l Layout) {
	if l == nil {
		panic("tiling: SetLayout with nil layout")
	}
	w.layout = l
	w.layout.Invalidate()
}

// Layout runs the active layout over the workspace's tiles. It reports
// whether a pass actually ran, which is false when the layout was clean.
func (w *Workspace) Layout() bool {
	if !w.layout.IsDirty() {
		return false
	}

	info := &UpdateInfo{
		Tiles:         w.tiles,
		WorkspaceBBox: w.Display.BBox,
		FocusedTileID: w.focused,
	}
	w.layout.Layout(info)
	return true
}

// AddTile appends tile and focuses it. Callers must not reuse an id that is
// already present.
func (w *Workspace) AddTile(tile Tile) {
	w.tiles = append(w.tiles, tile)
	id := tile.ID
	w.focused = &id
}

// RemoveTile removes tile by its id. See RemoveTileByID.
func (w *Workspace) RemoveTile(tile Tile) {
	w.RemoveTileByID(tile.ID)
}

// RemoveTileByID removes the first tile with id. Focus is cleared when the
// removed tile was focused; no other tile is focused in its place. It panics
// when no tile has id.
func (w *Workspace) RemoveTileByID(id TileID) {
	idx := w.indexOf(id)
	if idx < 0 {
		panic(fmt.Sprintf("tiling: workspace %d has no tile %d", w.ID, id))
	}

	w.tiles = slices.Delete(w.tiles, idx, idx+1)
	if w.focused != nil && *w.focused == id {
		w.focused = nil
	}
}

// HasTile reports whether a tile with id exists.
func (w *Workspace) HasTile(id TileID) bool {
	return w.indexOf(id) >= 0
}

// Tiles returns a copy of the tiles in insertion order.
func (w *Workspace) Tiles() []Tile {
	return slices.Clone(w.tiles)
}

// Len returns the number of tiles.
func (w *Workspace) Len() int {
	return len(w.tiles)
}

// TileByID returns a copy of the tile with id, or nil.
func (w *Workspace) TileByID(id TileID) *Tile {
	idx := w.indexOf(id)
	if idx < 0 {
		return nil
	}
	t := w.tiles[idx]
	return &t
}

// FocusedTile returns a copy of the focused tile, or nil.
func (w *Workspace) FocusedTile() *Tile {
	if w.focused == nil {
		return nil
	}
	return w.TileByID(*w.focused)
}

// FocusedTileID returns the focused tile id.
func (w *Workspace) FocusedTileID() (TileID, bool) {
	if w.focused == nil {
		return 0, false
	}
	return *w.focused, true
}

// Focus moves focus to the tile with id. It returns false and leaves focus
// unchanged when no such tile exists.
func (w *Workspace) Focus(id TileID) bool {
	if w.indexOf(id) < 0 {
		return false
	}
	w.focused = &id
	return true
}

// NextTileID returns an id one above the highest in use, or 0 when empty.
func (w *Workspace) NextTileID() TileID {
	var next TileID
	for _, t := range w.tiles {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	return next
}

func (w *Workspace) indexOf(id TileID) int {
	return slices.IndexFunc(w.tiles, func(t Tile) bool { return t.ID == id })
}

// WorkspaceSnapshot is a read-only copy of a workspace.
type WorkspaceSnapshot struct {
	ID            WorkspaceID `json:"id"`
	Display       Display     `json:"display"`
	Tiles         []Tile      `json:"tiles"`
	Layout        Meta        `json:"layout"`
	LayoutDirty   bool        `json:"layout_dirty"`
	FocusedTileID *TileID     `json:"focused_tile_id,omitempty"`
}

// Snapshot copies the workspace's current state.
func (w *Workspace) Snapshot() WorkspaceSnapshot {
	s := WorkspaceSnapshot{
		ID:          w.ID,
		Display:     w.Display,
		Tiles:       w.Tiles(),
		Layout:      w.layout.Metadata(),
		LayoutDirty: w.layout.IsDirty(),
	}
	if s.Tiles == nil {
		s.Tiles = []Tile{}
	}
	if w.focused != nil {
		id := *w.focused
		s.FocusedTileID = &id
	}
	return s
}
