package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/twm/internal/tiling"
)

func (s *Server) handleProtocolVersion(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, VersionOutput, error) {
	v, err := s.twm.ProtocolVersion()
	if err != nil {
		return nil, VersionOutput{}, err
	}
	return nil, VersionOutput{Version: v}, nil
}

func (s *Server) handleTilesCount(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, CountOutput, error) {
	n, err := s.twm.TilesCount()
	if err != nil {
		return nil, CountOutput{}, err
	}
	return nil, CountOutput{Count: n}, nil
}

func (s *Server) handleGetTile(_ context.Context, _ *mcpsdk.CallToolRequest, args GetTileInput) (*mcpsdk.CallToolResult, TileOutput, error) {
	tile, err := s.twm.Tile(tiling.TileID(args.ID))
	if err != nil {
		s.logger.Debug("get_tile failed", "id", args.ID, "error", err)
		return nil, TileOutput{}, err
	}
	return nil, TileOutput{Tile: tile}, nil
}

func (s *Server) handleFocusedTile(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, TileOutput, error) {
	tile, err := s.twm.FocusedTile()
	if err != nil {
		return nil, TileOutput{}, err
	}
	return nil, TileOutput{Tile: tile}, nil
}

func (s *Server) handleActiveLayout(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, LayoutOutput, error) {
	meta, err := s.twm.ActiveLayout()
	if err != nil {
		return nil, LayoutOutput{}, err
	}
	return nil, LayoutOutput{Layout: meta}, nil
}

func (s *Server) handleFocusedWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, WorkspaceOutput, error) {
	ws, err := s.twm.FocusedWorkspace()
	if err != nil {
		return nil, WorkspaceOutput{}, err
	}
	return nil, WorkspaceOutput{Workspace: ws}, nil
}

func (s *Server) handleWorkspacesCount(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, CountOutput, error) {
	n, err := s.twm.WorkspacesCount()
	if err != nil {
		return nil, CountOutput{}, err
	}
	return nil, CountOutput{Count: n}, nil
}
