// Package config provides configuration loading for abductd.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/fyrsmithlabs/abductd/internal/schema"
)

// Config is the full abductd configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Provider  ProviderConfig  `koanf:"provider"`
	Abduction AbductionConfig `koanf:"abduction"`
}

// ServerConfig identifies the MCP server implementation.
type ServerConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`
}

// LoggingConfig controls the zap logger. Output always goes to stderr;
// stdout carries the MCP protocol stream.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ProviderConfig selects the optional execution backend. An empty backend
// leaves the engine in prompt-only mode.
type ProviderConfig struct {
	Backend     string        `koanf:"backend"`
	Model       string        `koanf:"model"`
	BaseURL     string        `koanf:"base_url"`
	APIKey      string        `koanf:"api_key"`
	Timeout     time.Duration `koanf:"timeout"`
	Temperature float64       `koanf:"temperature"`
	MaxTokens   int           `koanf:"max_tokens"`
}

// AbductionConfig tunes the reasoning defaults.
type AbductionConfig struct {
	DefaultHypotheses int  `koanf:"default_hypotheses"`
	UseCouncil        bool `koanf:"use_council"`
}

var knownBackends = []string{"anthropic", "openai", "gemini", "ollama"}

// providerKeyEnv maps a backend to the conventional API key variable,
// consulted only when the config carries no key.
var providerKeyEnv = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Name == "" {
		cfg.Server.Name = "abductd"
	}
	if cfg.Server.Version == "" {
		cfg.Server.Version = "1.0.0"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = 60 * time.Second
	}
	if cfg.Provider.APIKey == "" {
		if envVar, ok := providerKeyEnv[cfg.Provider.Backend]; ok {
			cfg.Provider.APIKey = os.Getenv(envVar)
		}
	}

	if cfg.Abduction.DefaultHypotheses == 0 {
		cfg.Abduction.DefaultHypotheses = 5
	}
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if backend := c.Provider.Backend; backend != "" && !slices.Contains(knownBackends, backend) {
		return fmt.Errorf("unknown provider backend %q (known: %s)",
			backend, strings.Join(knownBackends, ", "))
	}
	if c.Provider.Timeout < 0 {
		return fmt.Errorf("provider timeout must not be negative")
	}

	if n := c.Abduction.DefaultHypotheses; n < schema.MinHypotheses || n > schema.MaxHypotheses {
		return fmt.Errorf("default_hypotheses %d out of range [%d, %d]",
			n, schema.MinHypotheses, schema.MaxHypotheses)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown logging format %q (known: json, console)", c.Logging.Format)
	}

	return nil
}
