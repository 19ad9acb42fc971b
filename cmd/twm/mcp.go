package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/twm/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve daemon queries as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			logger := loggingFromContext(cmd.Context()).Logger
			if err := client.Ping(); err != nil {
				logger.Warn("daemon is not answering yet", "error", err)
			}
			return mcp.NewServer(client, logger).Run(cmd.Context())
		},
	}

	mcpCmd.AddCommand(serve)
	return mcpCmd
}
