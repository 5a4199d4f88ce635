// Package commands implements gokv's CLI: a cobra root command with
// serve, version, and users subcommands.
package commands

import (
	"github.com/rustyorg/gokv/pkg/config"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time via -ldflags.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "gokv",
	Short: "gokv - an in-memory, multi-tenant key-value server",
	Long: `gokv is a Redis-protocol-compatible, in-memory key-value server with
password-based multi-tenant authentication and optional per-key expiration.

Use "gokv [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/gokv/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(usersCmd)
}

// GetConfigFile returns the config file path from the global --config flag,
// or config.DefaultConfigPath() when the flag is not set.
func GetConfigFile() string {
	if cfgFile == "" {
		return config.DefaultConfigPath()
	}
	return cfgFile
}
