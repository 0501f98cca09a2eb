// Package cmd defines and implements the CLI commands for the harvester executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvester",
		Short: "Harvests game-experience metadata into one canonical record per experience.",
		Long: `harvester merges three views of a game experience - the public JSON API,
the statically served HTML, and the rendered browser DOM - into one
canonical record per experience, appends it to a dataset, and archives
the raw payloads in a keyed blob store.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (YAML)")
	cmd.AddCommand(newHarvestCmd())
	return cmd
}

// Execute runs the CLI. It is the only entry point main needs.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
