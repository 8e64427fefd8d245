package phase

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/abductd/internal/registry"
	"github.com/fyrsmithlabs/abductd/internal/schema"
)

// DefaultHypotheses is the count applied at the boundary when the caller
// omits one. The builder itself never defaults; it validates what it is
// given.
const DefaultHypotheses = 5

// HypothesisRequest carries the phase 1 artifact and the requested set size
// into phase 2.
type HypothesisRequest struct {
	AnomalyJSON string
	Count       int
}

const hypothesisTemplate = `%s

TASK: Generate %d explanatory hypotheses through ABDUCTION.

## The Surprising Fact (C)
%s

## Surprise Level
%s

## Context
%s

## Domain
%s

%s

## Abduction Requirement

For each hypothesis A, it must be true that:
"If A were true, then %s would be a matter of course."

## Generation Guidelines

- Hypotheses must be DIVERSE (not variations of the same idea)
- Include at least one "surprising" hypothesis (unlikely but high explanatory power)
- Each must be independently testable/falsifiable
- Consider multiple causal pathways

## Output Schema

Respond with ONLY this JSON structure:
` + "```json" + `
{
    "hypotheses": [
        {
            "id": "H1",
            "statement": "clear, falsifiable hypothesis statement",
            "explains_anomaly": "how this hypothesis makes the observation expected",
            "prior_probability": 0.0-1.0,
            "assumptions": [
                {"statement": "assumption required", "testable": true}
            ],
            "testable_predictions": [
                {
                    "prediction": "observable consequence if true",
                    "test_method": "how to test this",
                    "if_true": "what this result means",
                    "if_false": "what this result means"
                }
            ]
        }
    ]
}
` + "```" + `

Generate exactly %d hypotheses.`

// BuildHypotheses constructs the phase 2 instruction from a validated
// anomaly. Count outside [MinHypotheses, MaxHypotheses] is rejected.
func BuildHypotheses(req HypothesisRequest) (*Instruction, error) {
	if req.Count < schema.MinHypotheses || req.Count > schema.MaxHypotheses {
		return nil, &RangeError{
			Field: "num_hypotheses",
			Value: req.Count,
			Min:   schema.MinHypotheses,
			Max:   schema.MaxHypotheses,
		}
	}

	anomaly, err := schema.ParseAnomaly("anomaly_json", req.AnomalyJSON)
	if err != nil {
		return nil, err
	}

	surprise := anomaly.SurpriseLevel
	if surprise == "" {
		surprise = "surprising"
	}
	domain := registry.ParseDomain(anomaly.Domain)

	prompt := fmt.Sprintf(hypothesisTemplate,
		systemDirective,
		req.Count,
		anomaly.Fact,
		surprise,
		contextLines(anomaly.Context),
		domain,
		registry.Guidance(domain),
		anomaly.Fact,
		req.Count,
	)

	return newInstruction(
		PhaseHypothesis,
		prompt,
		schema.HypothesisSetID,
		OpEvaluate,
		"Execute this prompt with an LLM, then pass the hypotheses JSON to "+OpEvaluate,
	), nil
}

func contextLines(items []string) string {
	if len(items) == 0 {
		return "None provided"
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}
