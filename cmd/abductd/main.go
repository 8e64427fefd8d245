// Package main implements the abductd MCP server and CLI.
//
// abductd serves five abductive-reasoning tools over the MCP stdio
// transport. The default mode returns instruction prompts for the caller to
// execute; with a configured provider backend the chain command can also
// execute the full three-phase loop directly.
//
// Usage:
//
//	# Serve MCP on stdio (default)
//	abductd
//
//	# Run the full chain against a configured provider
//	abductd chain --observation "Customer churn rate doubled in Q3" --domain financial
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/abductd/internal/config"
)

var (
	configPath string
	version    = "dev" // set via ldflags during build
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "abductd",
	Short: "MCP server for Peircean abductive reasoning",
	Long: `abductd guides an LLM through a three-phase abductive loop:
observe an anomaly, generate explanatory hypotheses, and select the best
explanation. Run without arguments to serve the tools over MCP stdio.`,
	Version: version,
	RunE:    runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/abductd/config.yaml)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chainCmd)
}

// loadConfig loads and validates configuration for any command.
func loadConfig() (*config.Config, error) {
	if err := config.EnsureConfigDir(); err != nil {
		return nil, err
	}
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
