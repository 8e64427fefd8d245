package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/abductd/internal/phase"
	"github.com/fyrsmithlabs/abductd/internal/provider"
)

// toolResult is the single output shape for every tool. Kind discriminates:
// "instruction" payloads carry a prompt and its contract, "error" payloads
// carry a message and a repair hint. Everything else is omitted.
type toolResult struct {
	Kind          string `json:"kind" jsonschema:"required,Payload discriminator: instruction or error"`
	Phase         string `json:"phase,omitempty" jsonschema:"Reasoning phase this instruction belongs to"`
	PhaseNumber   int    `json:"phase_number,omitempty" jsonschema:"1-based position in the three-phase sequence"`
	Prompt        string `json:"prompt,omitempty" jsonschema:"Instruction text to execute with an LLM"`
	Schema        string `json:"schema,omitempty" jsonschema:"Contract the executed response must satisfy"`
	NextOperation string `json:"next_operation,omitempty" jsonschema:"Tool to call with the executed response"`
	Usage         string `json:"usage,omitempty" jsonschema:"How to use this payload"`
	Message       string `json:"message,omitempty" jsonschema:"Error description"`
	Hint          string `json:"hint,omitempty" jsonschema:"How to repair the request"`
}

func instructionResult(ins *phase.Instruction) toolResult {
	return toolResult{
		Kind:          ins.Kind,
		Phase:         string(ins.Phase),
		PhaseNumber:   ins.PhaseNumber,
		Prompt:        ins.Prompt,
		Schema:        string(ins.Schema),
		NextOperation: ins.NextOperation,
		Usage:         ins.Usage,
	}
}

// errorResult folds any engine error into the uniform error payload. The
// taxonomy types carry their own hints; anything else gets a generic one.
func errorResult(err error) toolResult {
	res := toolResult{Kind: "error", Message: err.Error()}
	var hinter interface{ Hint() string }
	switch {
	case errors.As(err, &hinter):
		res.Hint = hinter.Hint()
	case errors.Is(err, provider.ErrUnavailable):
		res.Hint = "configure a provider backend and API key, or execute the instruction with your own LLM"
	default:
		res.Hint = "check the input values and retry"
	}
	return res
}

// callResult renders the payload as text content alongside the structured
// output, for clients that only read text.
func callResult(out toolResult) *mcp.CallToolResult {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		data = []byte(`{"kind": "error", "message": "payload serialization failed"}`)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}
}

type observeInput struct {
	Observation string `json:"observation" jsonschema:"required,The surprising or anomalous fact to explain"`
	Context     string `json:"context,omitempty" jsonschema:"Additional background information"`
	Domain      string `json:"domain,omitempty" jsonschema:"Domain context: general financial legal medical technical or scientific"`
}

type hypothesesInput struct {
	AnomalyJSON   string `json:"anomaly_json" jsonschema:"required,The executed JSON output of observe_anomaly"`
	NumHypotheses *int   `json:"num_hypotheses,omitempty" jsonschema:"Number of distinct hypotheses to generate (1-20 default 5)"`
}

type evaluateInput struct {
	AnomalyJSON    string   `json:"anomaly_json" jsonschema:"required,The executed JSON output of observe_anomaly"`
	HypothesesJSON string   `json:"hypotheses_json" jsonschema:"required,The executed JSON output of generate_hypotheses"`
	UseCouncil     bool     `json:"use_council,omitempty" jsonschema:"Score through the default Council of Critics"`
	CustomCouncil  []string `json:"custom_council,omitempty" jsonschema:"Critic roles replacing the default council entirely"`
}

type singleShotInput struct {
	Observation   string `json:"observation" jsonschema:"required,The surprising or anomalous fact to explain"`
	Context       string `json:"context,omitempty" jsonschema:"Additional background information"`
	Domain        string `json:"domain,omitempty" jsonschema:"Domain context: general financial legal medical technical or scientific"`
	NumHypotheses *int   `json:"num_hypotheses,omitempty" jsonschema:"Number of distinct hypotheses to generate (1-20 default 5)"`
}

type criticInput struct {
	Critic         string `json:"critic" jsonschema:"required,The critic role to adopt (any specialist role is accepted)"`
	AnomalyJSON    string `json:"anomaly_json" jsonschema:"required,The executed JSON output of observe_anomaly"`
	HypothesesJSON string `json:"hypotheses_json" jsonschema:"required,The executed JSON output of generate_hypotheses"`
}

// registerTools wires all five reasoning tools. Validation failures are
// reported in the payload, never as protocol errors, so every call returns
// isError=false with a kind field to branch on.
func (s *Server) registerTools() {
	addTool(s, &mcp.Tool{
		Name:        phase.OpObserve,
		Description: "PHASE 1: Register the surprising fact (C) and get an instruction that classifies its surprise and nominates a Council of Critics",
	}, s.handleObserve)

	addTool(s, &mcp.Tool{
		Name:        phase.OpHypotheses,
		Description: "PHASE 2: Get an instruction that generates diverse explanatory hypotheses for a registered anomaly",
	}, s.handleHypotheses)

	addTool(s, &mcp.Tool{
		Name:        phase.OpEvaluate,
		Description: "PHASE 3: Get an instruction that selects the best explanation via Inference to Best Explanation, optionally through a Council of Critics",
	}, s.handleEvaluate)

	addTool(s, &mcp.Tool{
		Name:        phase.OpSingleShot,
		Description: "Get one fused instruction covering all three phases for quick analysis without intermediate artifacts",
	}, s.handleSingleShot)

	addTool(s, &mcp.Tool{
		Name:        phase.OpCritic,
		Description: "COUNCIL: Get an instruction that evaluates the hypotheses from one named critic's perspective",
	}, s.handleCritic)
}

// addTool registers a handler with shared annotations and metrics plumbing.
func addTool[In any](s *Server, tool *mcp.Tool, handle func(In) (toolResult, error)) {
	tool.Annotations = &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
	}
	mcp.AddTool(s.mcp, tool, func(ctx context.Context, req *mcp.CallToolRequest, args In) (*mcp.CallToolResult, toolResult, error) {
		start := time.Now()
		s.metrics.IncrementActive(ctx, tool.Name)
		out, toolErr := handle(args)
		s.metrics.DecrementActive(ctx, tool.Name)
		s.metrics.RecordInvocation(ctx, tool.Name, time.Since(start), toolErr)
		if toolErr != nil {
			s.logger.Warn("tool rejected input",
				zap.String("tool", tool.Name),
				zap.Error(toolErr))
		}
		return callResult(out), out, nil
	})
}

func (s *Server) handleObserve(args observeInput) (toolResult, error) {
	ins, err := phase.BuildObservation(phase.ObservationRequest{
		Observation: args.Observation,
		Context:     args.Context,
		Domain:      args.Domain,
	})
	if err != nil {
		return errorResult(err), err
	}
	return instructionResult(ins), nil
}

func (s *Server) handleHypotheses(args hypothesesInput) (toolResult, error) {
	// Only an omitted count takes the configured default; an explicit
	// value outside [1,20], zero included, is rejected, never clamped.
	count := s.defaultCount
	if args.NumHypotheses != nil {
		count = *args.NumHypotheses
	}
	ins, err := phase.BuildHypotheses(phase.HypothesisRequest{
		AnomalyJSON: args.AnomalyJSON,
		Count:       count,
	})
	if err != nil {
		return errorResult(err), err
	}
	return instructionResult(ins), nil
}

func (s *Server) handleEvaluate(args evaluateInput) (toolResult, error) {
	mode := phase.ModeCriteria
	switch {
	case len(args.CustomCouncil) > 0:
		mode = phase.ModeCustom
	case args.UseCouncil:
		mode = phase.ModeCouncil
	}
	ins, err := phase.BuildEvaluation(phase.EvaluationRequest{
		AnomalyJSON:    args.AnomalyJSON,
		HypothesesJSON: args.HypothesesJSON,
		Mode:           mode,
		Council:        args.CustomCouncil,
	})
	if err != nil {
		return errorResult(err), err
	}
	return instructionResult(ins), nil
}

func (s *Server) handleSingleShot(args singleShotInput) (toolResult, error) {
	count := s.defaultCount
	if args.NumHypotheses != nil {
		count = *args.NumHypotheses
	}
	ins, err := phase.BuildSingleShot(phase.SingleShotRequest{
		Observation: args.Observation,
		Context:     args.Context,
		Domain:      args.Domain,
		Count:       count,
	})
	if err != nil {
		return errorResult(err), err
	}
	return instructionResult(ins), nil
}

func (s *Server) handleCritic(args criticInput) (toolResult, error) {
	ins, err := phase.BuildCritic(phase.CriticRequest{
		Critic:         args.Critic,
		AnomalyJSON:    args.AnomalyJSON,
		HypothesesJSON: args.HypothesesJSON,
	})
	if err != nil {
		return errorResult(err), err
	}
	return instructionResult(ins), nil
}
