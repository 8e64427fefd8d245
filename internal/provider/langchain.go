package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Backend identifiers. The closed set mirrors the providers the config
// layer knows how to resolve credentials for.
const (
	BackendAnthropic = "anthropic"
	BackendOpenAI    = "openai"
	BackendGemini    = "gemini"
	BackendOllama    = "ollama"
)

// geminiOpenAIBase is Google's OpenAI-compatible endpoint. Gemini is driven
// through the openai client because langchaingo's native googleai client
// pins an incompatible genai version.
const geminiOpenAIBase = "https://generativelanguage.googleapis.com/v1beta/openai"

// Config selects and parameterizes an execution backend.
type Config struct {
	// Backend is one of the Backend* constants, or empty for
	// instruction-only mode.
	Backend string

	// Model is the backend-specific model name. Empty uses the backend
	// default.
	Model string

	// BaseURL overrides the backend endpoint (openai-compatible gateways,
	// local ollama hosts).
	BaseURL string

	// APIKey authenticates against the backend. Resolved by the config
	// layer; ollama needs none.
	APIKey string

	// Timeout bounds a single Execute call. Zero means no provider-level
	// timeout; the caller's context still applies.
	Timeout time.Duration

	// Temperature and MaxTokens are passed through to the model call.
	Temperature float64
	MaxTokens   int
}

func defaultModel(backend string) string {
	switch backend {
	case BackendAnthropic:
		return "claude-3-5-sonnet-20241022"
	case BackendOpenAI:
		return "gpt-4o"
	case BackendGemini:
		return "gemini-2.0-flash"
	case BackendOllama:
		return "llama3"
	}
	return ""
}

// langchainProvider executes instructions through a langchaingo model.
type langchainProvider struct {
	name    string
	model   llms.Model
	timeout time.Duration
	temp    float64
	maxTok  int
}

// New builds a provider from config. An empty backend, or a backend whose
// required API key is absent, yields the prompt-only provider rather than an
// error: missing credentials degrade to instruction-only mode. An unknown
// backend name is a configuration bug and is rejected.
func New(cfg Config) (Provider, error) {
	if cfg.Backend == "" {
		return PromptOnly(), nil
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel(cfg.Backend)
	}

	var (
		llm llms.Model
		err error
	)
	switch cfg.Backend {
	case BackendAnthropic:
		if cfg.APIKey == "" {
			return PromptOnly(), nil
		}
		llm, err = anthropic.New(
			anthropic.WithToken(cfg.APIKey),
			anthropic.WithModel(model),
		)
	case BackendOpenAI:
		if cfg.APIKey == "" {
			return PromptOnly(), nil
		}
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err = openai.New(opts...)
	case BackendGemini:
		if cfg.APIKey == "" {
			return PromptOnly(), nil
		}
		base := cfg.BaseURL
		if base == "" {
			base = geminiOpenAIBase
		}
		llm, err = openai.New(
			openai.WithToken(cfg.APIKey),
			openai.WithModel(model),
			openai.WithBaseURL(base),
		)
	case BackendOllama:
		opts := []ollama.Option{ollama.WithModel(model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		llm, err = ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unknown provider backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Backend, err)
	}

	return &langchainProvider{
		name:    cfg.Backend,
		model:   llm,
		timeout: cfg.Timeout,
		temp:    cfg.Temperature,
		maxTok:  cfg.MaxTokens,
	}, nil
}

func (p *langchainProvider) Name() string    { return p.name }
func (p *langchainProvider) Available() bool { return true }

func (p *langchainProvider) Execute(ctx context.Context, instruction string) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var opts []llms.CallOption
	if p.temp > 0 {
		opts = append(opts, llms.WithTemperature(p.temp))
	}
	if p.maxTok > 0 {
		opts = append(opts, llms.WithMaxTokens(p.maxTok))
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, p.model, instruction, opts...)
	if err != nil {
		return "", fmt.Errorf("%s execution failed: %w", p.name, err)
	}
	return out, nil
}
