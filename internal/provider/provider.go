// Package provider abstracts the optional LLM execution capability behind a
// single interface.
//
// Instruction building is always available and needs no provider; execution
// requires external connectivity and credentials. When no backend is
// configured the engine degrades to instruction-only mode: Execute returns
// ErrUnavailable instead of crashing, and callers that only want prompts
// never notice. The phase builders and the MCP boundary never branch on the
// concrete backend.
package provider

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the execution capability is not configured.
// This is only an error for callers that explicitly requested execution.
var ErrUnavailable = errors.New("provider: execution capability not configured")

// Provider is the capability interface for instruction execution.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Name identifies the backend for logging. It must not influence any
	// instruction content.
	Name() string

	// Available reports whether Execute can be expected to work.
	Available() bool

	// Execute sends an instruction to the backend and returns the raw
	// response text. It blocks until the backend responds, the context is
	// cancelled, or the configured timeout elapses. Returns ErrUnavailable
	// when execution is not configured.
	Execute(ctx context.Context, instruction string) (string, error)
}

// promptOnly is the degraded provider used when no backend is configured.
type promptOnly struct{}

// PromptOnly returns a provider without the execution capability.
func PromptOnly() Provider { return promptOnly{} }

func (promptOnly) Name() string    { return "prompt-only" }
func (promptOnly) Available() bool { return false }

func (promptOnly) Execute(context.Context, string) (string, error) {
	return "", ErrUnavailable
}
