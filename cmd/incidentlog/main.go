// Command incidentlog serves the incident log HTTP API.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bissquit/incidentlog/internal/app"
	"github.com/bissquit/incidentlog/internal/config"
	"github.com/bissquit/incidentlog/internal/version"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "incidentlog",
		Short:         "Incident log HTTP API",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// loadConfig reads configuration and installs the configured logger as default.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(app.NewLogger(cfg.Log, os.Stdout))
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		info := version.Get()
		fmt.Fprintf(cmd.OutOrStdout(), "incidentlog %s (commit %s, built %s)\n",
			info.Version, info.Commit, info.BuildDate)
	},
}
