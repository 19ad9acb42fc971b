package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/twm/internal/config"
)

func newConfigCmd() *cobra.Command {
	var (
		dir  string
		path string
	)

	load := func() (*config.LoadResult, error) {
		if path != "" {
			return config.LoadFromPath(path)
		}
		if dir == "" {
			return config.Load()
		}
		return config.LoadDir(dir)
	}

	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cfgCmd.PersistentFlags().StringVar(&dir, "config-dir", "", "config directory (default ~/.config/twm)")
	cfgCmd.PersistentFlags().StringVar(&path, "path", "", "config file to read instead of the config directory")

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := load()
			if err != nil {
				return err
			}
			if res.Path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No config file found; defaults are valid")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config OK: %s\n", res.Path)
			return nil
		},
	}

	var format string
	printCmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := load()
			if err != nil {
				return err
			}
			f := config.Format(format)
			if format == "" {
				f = res.Format
				if f == "" {
					f = config.FormatYAML
				}
			}
			return config.Encode(cmd.OutOrStdout(), res.Config, f)
		},
	}
	printCmd.Flags().StringVar(&format, "format", "", "output format: yaml, toml, json (default: the file's format)")

	cfgCmd.AddCommand(validate, printCmd)
	return cfgCmd
}
