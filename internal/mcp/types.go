package mcp

import "github.com/1broseidon/twm/internal/tiling"

// NoInput is the input of tools that take no arguments.
type NoInput struct{}

// VersionOutput is the output for the protocol_version tool.
type VersionOutput struct {
	Version string `json:"version"`
}

// CountOutput is the output for the counting tools.
type CountOutput struct {
	Count int `json:"count"`
}

// GetTileInput is the input for the get_tile tool.
type GetTileInput struct {
	ID uint32 `json:"id" jsonschema:"Tile id within the focused workspace"`
}

// TileOutput is the output for tools returning one tile.
type TileOutput struct {
	Tile tiling.Tile `json:"tile"`
}

// LayoutOutput is the output for the active_layout tool.
type LayoutOutput struct {
	Layout tiling.Meta `json:"layout"`
}

// WorkspaceOutput is the output for the focused_workspace tool.
type WorkspaceOutput struct {
	Workspace tiling.WorkspaceSnapshot `json:"workspace"`
}
