package main

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/1broseidon/twm/internal/daemon"
	"github.com/1broseidon/twm/internal/ipc"
	"github.com/1broseidon/twm/internal/runtimepath"
)

func socketPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("socket"); p != "" {
		return p, nil
	}
	return runtimepath.SocketPath()
}

func newClient(cmd *cobra.Command) (*ipc.Client, error) {
	socket, err := socketPath(cmd)
	if err != nil {
		return nil, err
	}
	return ipc.NewClient(socket), nil
}

func newInfoCmd() *cobra.Command {
	info := &cobra.Command{
		Use:   "info",
		Short: "Query the running daemon",
	}

	var id uint32
	get := &cobra.Command{
		Use:       "get <name>",
		Short:     "Print the answer to a query as JSON",
		Args:      cobra.ExactArgs(1),
		ValidArgs: queryNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := ipc.CommandType(args[0])
			if !slices.Contains(ipc.QueryCommands, command) {
				return fmt.Errorf("unknown query %q (run 'twm info list')", args[0])
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			var payload any
			if command == ipc.CommandTileByID {
				if !cmd.Flags().Changed("id") {
					return errors.New("tileById requires --id")
				}
				payload = ipc.TileByIDPayload{ID: id}
			}

			data, err := client.Call(command, payload)
			if errors.Is(err, daemon.ErrNotAvailable) {
				return fmt.Errorf("%s: not available", command)
			}
			if err != nil {
				return err
			}
			return writeJSON(os.Stdout, data)
		},
	}
	get.Flags().Uint32Var(&id, "id", 0, "tile id for tileById")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the available queries",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range queryNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}

	info.AddCommand(get, list)
	return info
}

func queryNames() []string {
	names := make([]string, len(ipc.QueryCommands))
	for i, c := range ipc.QueryCommands {
		names[i] = string(c)
	}
	return names
}

func newRelayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relayout",
		Short: "Re-apply the focused workspace's layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			return client.Relayout()
		},
	}
}

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Make the daemon reload its configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			if err := client.Reload(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration reloaded")
			return nil
		},
	}
}
