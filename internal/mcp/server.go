package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/abductd/internal/phase"
	"github.com/fyrsmithlabs/abductd/internal/provider"
)

// Server exposes the reasoning tools over MCP. It holds no per-call state;
// the provider is only consulted by an optional execution path.
type Server struct {
	mcp          *mcp.Server
	provider     provider.Provider
	metrics      *Metrics
	logger       *zap.Logger
	defaultCount int
}

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "abductd")
	Name string

	// Version is the server version (default: "1.0.0")
	Version string

	// Logger for structured logging. Must write to stderr; stdout carries
	// the protocol stream.
	Logger *zap.Logger

	// DefaultHypotheses is applied when a caller omits num_hypotheses
	// (default: 5).
	DefaultHypotheses int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:              "abductd",
		Version:           "1.0.0",
		Logger:            zap.NewNop(),
		DefaultHypotheses: phase.DefaultHypotheses,
	}
}

// NewServer creates the MCP server. The provider may be the prompt-only
// degrade; tools never require execution capability.
func NewServer(cfg *Config, p provider.Provider) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Name == "" {
		cfg.Name = "abductd"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.DefaultHypotheses == 0 {
		cfg.DefaultHypotheses = phase.DefaultHypotheses
	}
	if p == nil {
		return nil, fmt.Errorf("provider is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		nil,
	)

	s := &Server{
		mcp:          mcpServer,
		provider:     p,
		metrics:      NewMetrics(cfg.Logger),
		logger:       cfg.Logger,
		defaultCount: cfg.DefaultHypotheses,
	}
	s.registerTools()
	return s, nil
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport",
		zap.String("provider", s.provider.Name()),
		zap.Bool("provider_available", s.provider.Available()))
	transport := &mcp.StdioTransport{}
	if err := s.mcp.Run(ctx, transport); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}
