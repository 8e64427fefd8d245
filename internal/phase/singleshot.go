package phase

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/abductd/internal/registry"
	"github.com/fyrsmithlabs/abductd/internal/schema"
)

// SingleShotRequest fuses all three phases into one instruction for callers
// that do not need intermediate artifacts.
type SingleShotRequest struct {
	Observation string
	Context     string
	Domain      string
	Count       int
}

const singleShotTemplate = `%s

TASK: Perform COMPLETE abductive reasoning on this observation.

## The Observation
%s

## Context
%s

## Domain
%s

%s

## Peirce's Abductive Schema

1. "The surprising fact, C, is observed."
2. "But if A were true, C would be a matter of course."
3. "Hence, there is reason to suspect that A is true."

## Your Task

### Phase 1: Analyze the Surprise
- What makes this surprising?
- What would have been expected?
- How surprising is it? (0.0-1.0)

### Phase 2: Generate %d Hypotheses
For each hypothesis:
- Clear, falsifiable statement
- How it explains the observation
- Prior probability
- Testable predictions

### Phase 3: Select Best Explanation (IBE)
Evaluate on: explanatory power, parsimony, testability, consilience
Select the best and justify.

## Output Schema

Respond with ONLY this JSON structure:
` + "```json" + `
{
    "observation_analysis": {
        "fact": "restated observation",
        "surprise_level": "expected|mild|surprising|high|anomalous",
        "surprise_score": 0.0-1.0,
        "expected_baseline": "what was expected",
        "surprise_source": "why surprising"
    },
    "hypotheses": [
        {
            "id": "H1",
            "statement": "hypothesis statement",
            "explains_anomaly": "how it explains",
            "prior_probability": 0.0-1.0,
            "testable_predictions": ["prediction 1"],
            "scores": {
                "explanatory_power": 0.0-1.0,
                "parsimony": 0.0-1.0,
                "testability": 0.0-1.0,
                "consilience": 0.0-1.0,
                "composite": 0.0-1.0
            }
        }
    ],
    "selection": {
        "best_hypothesis": "H1",
        "confidence": 0.0-1.0,
        "rationale": "why selected",
        "next_steps": ["action 1", "action 2"]
    }
}
` + "```"

// BuildSingleShot constructs the fused instruction. Validation matches the
// sequenced builders: non-empty observation, count in range, unknown domain
// falls back to general.
func BuildSingleShot(req SingleShotRequest) (*Instruction, error) {
	if strings.TrimSpace(req.Observation) == "" {
		return nil, &InputError{Field: "observation", Reason: "must be a non-empty description of the surprising fact"}
	}
	if req.Count < schema.MinHypotheses || req.Count > schema.MaxHypotheses {
		return nil, &RangeError{
			Field: "num_hypotheses",
			Value: req.Count,
			Min:   schema.MinHypotheses,
			Max:   schema.MaxHypotheses,
		}
	}

	domain := registry.ParseDomain(req.Domain)
	context := req.Context
	if strings.TrimSpace(context) == "" {
		context = "No additional context provided."
	}

	prompt := fmt.Sprintf(singleShotTemplate,
		systemDirective,
		req.Observation,
		context,
		domain,
		registry.Guidance(domain),
		req.Count,
	)

	return newInstruction(
		PhaseSingleShot,
		prompt,
		schema.AbductionID,
		"",
		"Execute this prompt with an LLM for complete abductive analysis in one step.",
	), nil
}
