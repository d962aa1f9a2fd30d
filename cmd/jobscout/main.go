package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/honeycarbs/jobscout/internal/config"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "jobscout",
		Short: "Search several job boards at once",
		Long: `jobscout queries REST APIs, RSS feeds and HTML job boards concurrently,
normalizes what they return into one listing shape and removes duplicates.

Run it once from the command line, or serve the same search to MCP clients.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./configs/config.yaml)")

	load := func() (config.Config, error) {
		cfg, err := config.Load(configFile)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jobscout %s\n", version)
		},
	}

	rootCmd.AddCommand(newSearchCmd(load))
	rootCmd.AddCommand(newSourcesCmd(load))
	rootCmd.AddCommand(newServeCmd(load))
	rootCmd.AddCommand(versionCmd)
	return rootCmd
}

type loadFunc func() (config.Config, error)
