package daemon

import (
	"errors"

	"github.com/1broseidon/twm/internal/tiling"
)

// ProtocolVersion is the version of the query surface.
const ProtocolVersion = "1.0"

// ErrNotAvailable is the single error a query returns when it has no answer,
// such as when no workspace is focused or a tile id is unknown.
var ErrNotAvailable = errors.New("not available")

// Querier is the read-only view of a running Twm.
type Querier interface {
	ProtocolVersion() (string, error)
	TilesCount() (int, error)
	Tile(id tiling.TileID) (tiling.Tile, error)
	FocusedTile() (tiling.Tile, error)
	ActiveLayout() (tiling.Meta, error)
	FocusedWorkspace() (tiling.WorkspaceSnapshot, error)
	WorkspacesCount() (int, error)
}

// Controller is a Querier that also accepts commands.
type Controller interface {
	Querier
	Relayout() error
	Reload() error
}

var _ Controller = (*Twm)(nil)

func (t *Twm) ProtocolVersion() (string, error) {
	return ProtocolVersion, nil
}

// TilesCount returns the number of tiles in the focused workspace.
func (t *Twm) TilesCount() (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ws := t.manager.FocusedWorkspace()
	if ws == nil {
		return 0, ErrNotAvailable
	}
	return ws.Len(), nil
}

// Tile returns the tile with id in the focused workspace.
func (t *Twm) Tile(id tiling.TileID) (tiling.Tile, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if ws := t.manager.FocusedWorkspace(); ws != nil {
		if tile := ws.TileByID(id); tile != nil {
			return *tile, nil
		}
	}
	return tiling.Tile{}, ErrNotAvailable
}

func (t *Twm) FocusedTile() (tiling.Tile, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if ws := t.manager.FocusedWorkspace(); ws != nil {
		if tile := ws.FocusedTile(); tile != nil {
			return *tile, nil
		}
	}
	return tiling.Tile{}, ErrNotAvailable
}

// ActiveLayout returns the focused workspace's layout metadata.
func (t *Twm) ActiveLayout() (tiling.Meta, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ws := t.manager.FocusedWorkspace()
	if ws == nil {
		return tiling.Meta{}, ErrNotAvailable
	}
	return ws.ActiveLayout().Metadata(), nil
}

func (t *Twm) FocusedWorkspace() (tiling.WorkspaceSnapshot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ws := t.manager.FocusedWorkspace()
	if ws == nil {
		return tiling.WorkspaceSnapshot{}, ErrNotAvailable
	}
	return ws.Snapshot(), nil
}

func (t *Twm) WorkspacesCount() (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.manager.Len(), nil
}
