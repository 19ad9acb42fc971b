// Package mcp serves the daemon's read-only query surface as MCP tools.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/twm/internal/daemon"
)

const (
	ServerName    = "twm"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for twm queries.
type Server struct {
	mcpServer *mcpsdk.Server
	twm       daemon.Querier
	logger    *slog.Logger
}

// NewServer creates an MCP server answering from q, which is usually an IPC
// client talking to the daemon.
func NewServer(q daemon.Querier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{twm: q, logger: logger}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "protocol_version",
		Description: "Return the version of the twm query protocol.",
	}, s.handleProtocolVersion)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "tiles_count",
		Description: "Count the tiles in the focused workspace.",
	}, s.handleTilesCount)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_tile",
		Description: "Get a tile of the focused workspace by id, with its bounding box and window.",
	}, s.handleGetTile)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focused_tile",
		Description: "Get the focused tile of the focused workspace.",
	}, s.handleFocusedTile)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "active_layout",
		Description: "Get the name of the layout arranging the focused workspace.",
	}, s.handleActiveLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focused_workspace",
		Description: "Get a snapshot of the focused workspace: display, tiles, layout and focus.",
	}, s.handleFocusedWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "workspaces_count",
		Description: "Count the workspaces twm manages.",
	}, s.handleWorkspacesCount)
}
