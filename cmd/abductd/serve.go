package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/abductd/internal/config"
	"github.com/fyrsmithlabs/abductd/internal/logging"
	"github.com/fyrsmithlabs/abductd/internal/mcp"
	"github.com/fyrsmithlabs/abductd/internal/provider"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reasoning tools over MCP stdio",
	Long: `Serve the five reasoning tools over the MCP stdio transport.

Logs go to stderr; stdout is reserved for the protocol stream.

Examples:
  # Serve with defaults (prompt-only mode)
  abductd serve

  # Serve with an execution backend
  PROVIDER_BACKEND=anthropic ANTHROPIC_API_KEY=... abductd serve`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer logging.Sync(logger) //nolint:errcheck

	p, err := provider.New(providerConfig(cfg))
	if err != nil {
		return err
	}
	logger.Info("provider configured",
		zap.String("provider", p.Name()),
		zap.Bool("available", p.Available()),
		logging.RedactedString("api_key", cfg.Provider.APIKey))

	server, err := mcp.NewServer(&mcp.Config{
		Name:              cfg.Server.Name,
		Version:           cfg.Server.Version,
		Logger:            logger,
		DefaultHypotheses: cfg.Abduction.DefaultHypotheses,
	}, p)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx)
}

// providerConfig maps the loaded configuration onto the provider layer.
func providerConfig(cfg *config.Config) provider.Config {
	return provider.Config{
		Backend:     cfg.Provider.Backend,
		Model:       cfg.Provider.Model,
		BaseURL:     cfg.Provider.BaseURL,
		APIKey:      cfg.Provider.APIKey,
		Timeout:     cfg.Provider.Timeout,
		Temperature: cfg.Provider.Temperature,
		MaxTokens:   cfg.Provider.MaxTokens,
	}
}
