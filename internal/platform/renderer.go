package platform

import (
	"log/slog"

	"github.com/1broseidon/twm/internal/tiling"
)

// Renderer applies tile geometry to real windows.
type Renderer struct {
	backend Backend
	logger  *slog.Logger

	// OnFailure, when set, is called once per tile that could not be moved.
	OnFailure func(tile tiling.Tile, err error)
}

func NewRenderer(backend Backend, logger *slog.Logger) *Renderer {
	return &Renderer{backend: backend, logger: logger}
}

// Render moves every tile's window to the tile's bbox and returns how many
// tiles failed. A stale handle only fails its own tile.
func (r *Renderer) Render(ws *tiling.Workspace) int {
	return r.RenderTiles(ws.ID, ws.Tiles())
}

// RenderTiles is Render for tiles copied out of a workspace, so callers can
// render without holding the workspace.
func (r *Renderer) RenderTiles(workspace tiling.WorkspaceID, tiles []tiling.Tile) int {
	failed := 0
	for _, tile := range tiles {
		if err := r.backend.MoveResize(tile.Window.Handle, tile.BBox); err != nil {
			failed++
			r.logger.Error("failed to position window",
				"workspace", workspace, "tile", tile.ID, "handle", tile.Window.Handle, "bbox", tile.BBox.String(), "error", err)
			if r.OnFailure != nil {
				r.OnFailure(tile, err)
			}
			continue
		}
		r.logger.Debug("positioned window", "tile", tile.ID, "bbox", tile.BBox.String())
	}
	return failed
}
