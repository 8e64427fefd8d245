package phase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/abductd/internal/provider"
	"github.com/fyrsmithlabs/abductd/internal/schema"
)

// ChainRequest drives a full observe, hypothesize, evaluate pass against an
// executing provider.
type ChainRequest struct {
	Observation string
	Context     string
	Domain      string
	Count       int
	Mode        EvalMode
	Council     []string
}

// ChainStep records one executed phase: the instruction sent and the raw
// model response before parsing.
type ChainStep struct {
	Phase       Phase        `json:"phase"`
	Instruction *Instruction `json:"instruction"`
	RawResponse string       `json:"raw_response"`
	DurationMS  int64        `json:"duration_ms"`
}

// ChainResult carries the parsed artifact of every phase. Steps holds the
// audit trail in execution order.
type ChainResult struct {
	Steps      []ChainStep           `json:"steps"`
	Anomaly    *schema.Anomaly       `json:"anomaly"`
	Hypotheses *schema.HypothesisSet `json:"hypotheses"`
	Evaluation *schema.Evaluation    `json:"evaluation"`
}

// ChainError reports which phase a chain run failed in.
type ChainError struct {
	Phase Phase
	Err   error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("chain failed in %s phase: %v", e.Phase, e.Err)
}

func (e *ChainError) Unwrap() error { return e.Err }

// Runner executes the three-phase chain against a provider. The builders
// stay pure; only the Runner touches the network.
type Runner struct {
	provider provider.Provider
	logger   *zap.Logger
}

// NewRunner returns a Runner bound to an executing provider.
func NewRunner(p provider.Provider, logger *zap.Logger) (*Runner, error) {
	if p == nil {
		return nil, errors.New("provider is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{provider: p, logger: logger}, nil
}

// Run walks the chain end to end, short-circuiting on the first failed
// phase. Raw responses are fence-stripped before parsing; each phase's
// stripped output is fed verbatim into the next builder so fields outside
// the contract survive the hop. On failure the partial result is returned
// alongside the error: its Steps record every instruction sent, including
// the one the failing phase was given.
func (r *Runner) Run(ctx context.Context, req ChainRequest) (*ChainResult, error) {
	if !r.provider.Available() {
		return nil, provider.ErrUnavailable
	}
	if req.Count == 0 {
		req.Count = DefaultHypotheses
	}

	result := &ChainResult{}

	// Phase 1: observe.
	obs, err := BuildObservation(ObservationRequest{
		Observation: req.Observation,
		Context:     req.Context,
		Domain:      req.Domain,
	})
	if err != nil {
		return result, &ChainError{Phase: PhaseObservation, Err: err}
	}
	anomalyRaw, err := r.execute(ctx, obs, result)
	if err != nil {
		return result, err
	}
	result.Anomaly, err = schema.ParseAnomaly("anomaly_json", anomalyRaw)
	if err != nil {
		return result, &ChainError{Phase: PhaseObservation, Err: err}
	}

	// Phase 2: hypothesize.
	hyp, err := BuildHypotheses(HypothesisRequest{AnomalyJSON: anomalyRaw, Count: req.Count})
	if err != nil {
		return result, &ChainError{Phase: PhaseHypothesis, Err: err}
	}
	setRaw, err := r.execute(ctx, hyp, result)
	if err != nil {
		return result, err
	}
	result.Hypotheses, err = schema.ParseHypothesisSet("hypotheses_json", setRaw)
	if err != nil {
		return result, &ChainError{Phase: PhaseHypothesis, Err: err}
	}

	// Phase 3: evaluate.
	eval, err := BuildEvaluation(EvaluationRequest{
		AnomalyJSON:    anomalyRaw,
		HypothesesJSON: setRaw,
		Mode:           req.Mode,
		Council:        req.Council,
	})
	if err != nil {
		return result, &ChainError{Phase: PhaseEvaluation, Err: err}
	}
	evalRaw, err := r.execute(ctx, eval, result)
	if err != nil {
		return result, err
	}
	result.Evaluation, err = schema.ParseEvaluation("evaluation_json", evalRaw)
	if err != nil {
		return result, &ChainError{Phase: PhaseEvaluation, Err: err}
	}
	if err := result.Evaluation.ValidateAgainst("evaluation_json", result.Hypotheses); err != nil {
		return result, &ChainError{Phase: PhaseEvaluation, Err: err}
	}

	r.logger.Info("chain complete",
		zap.String("best_hypothesis", result.Evaluation.BestHypothesis),
		zap.String("verdict", result.Evaluation.Verdict),
		zap.Int("hypotheses", len(result.Hypotheses.Hypotheses)))

	return result, nil
}

// execute runs one instruction, appends the audit step, and returns the
// fence-stripped response. The step is recorded even when the provider
// fails, so the trail always shows what was sent to the failing phase.
func (r *Runner) execute(ctx context.Context, ins *Instruction, result *ChainResult) (string, error) {
	r.logger.Debug("executing phase",
		zap.String("phase", string(ins.Phase)),
		zap.String("provider", r.provider.Name()))

	start := time.Now()
	raw, err := r.provider.Execute(ctx, ins.Prompt)
	elapsed := time.Since(start)

	result.Steps = append(result.Steps, ChainStep{
		Phase:       ins.Phase,
		Instruction: ins,
		RawResponse: raw,
		DurationMS:  elapsed.Milliseconds(),
	})
	if err != nil {
		return "", &ChainError{Phase: ins.Phase, Err: err}
	}
	return schema.StripFences(raw), nil
}
