package phase

import "github.com/fyrsmithlabs/abductd/internal/schema"

// Phase identifies one step of the reasoning protocol.
type Phase string

const (
	PhaseObservation Phase = "observation"
	PhaseHypothesis  Phase = "hypothesis_generation"
	PhaseEvaluation  Phase = "inference_to_best_explanation"
	PhaseSingleShot  Phase = "complete_abduction"
	PhaseCritic      Phase = "critic_evaluation"
)

// Number returns the 1-based position of a sequenced phase, or 0 for the
// fused and critic phases which sit outside the three-step sequence.
func (p Phase) Number() int {
	switch p {
	case PhaseObservation:
		return 1
	case PhaseHypothesis:
		return 2
	case PhaseEvaluation:
		return 3
	}
	return 0
}

// Operation names as exposed at the tool boundary. NextOperation on an
// Instruction uses these so a caller can walk the chain without any
// server-side session state.
const (
	OpObserve    = "observe_anomaly"
	OpHypotheses = "generate_hypotheses"
	OpEvaluate   = "evaluate_via_ibe"
	OpSingleShot = "abduce_single_shot"
	OpCritic     = "critic_evaluate"
)

// Instruction is the payload every builder returns. Kind is always
// "instruction"; error payloads at the boundary use kind "error" instead,
// so a caller can branch on that single field.
type Instruction struct {
	Kind          string    `json:"kind"`
	Phase         Phase     `json:"phase"`
	PhaseNumber   int       `json:"phase_number,omitempty"`
	Prompt        string    `json:"prompt"`
	Schema        schema.ID `json:"schema"`
	NextOperation string    `json:"next_operation,omitempty"`
	Usage         string    `json:"usage,omitempty"`
}

func newInstruction(p Phase, prompt string, id schema.ID, next, usage string) *Instruction {
	return &Instruction{
		Kind:          "instruction",
		Phase:         p,
		PhaseNumber:   p.Number(),
		Prompt:        prompt,
		Schema:        id,
		NextOperation: next,
		Usage:         usage,
	}
}
