package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "twm",
		Short:         "twm is a tiling window manager for X11",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogging(cmd.Context(), newLogging(os.Stderr, verbose)))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().String("socket", "", "IPC socket path (default $XDG_RUNTIME_DIR/twm.sock)")

	root.AddCommand(newDaemonCmd())
	root.AddCommand(newInfoCmd())
	root.AddCommand(newRelayoutCmd())
	root.AddCommand(newReloadCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newMCPCmd())
	return root
}
