package phase

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/abductd/internal/registry"
	"github.com/fyrsmithlabs/abductd/internal/schema"
)

// ObservationRequest carries the raw inputs for phase 1.
type ObservationRequest struct {
	Observation string
	Context     string
	Domain      string
}

const observationTemplate = `%s

TASK: Analyze this observation to determine if it constitutes a "surprising fact" (C) in the Peircean sense.
Also, NOMINATE a "Council of Critics" (3-5 specialist roles) who would be best suited to evaluate hypotheses for this specific anomaly.

## The Observation
%s

## Context
%s

## Domain
%s

%s

## Analysis Requirements

A fact is SURPRISING when it violates expectations based on:
- Prior probability (statistically unlikely)
- Causal expectations (effect without expected cause)
- Pattern violations (breaks established regularities)
- Category violations (thing behaves unlike its type)

## Output Schema

Respond with ONLY this JSON structure:
` + "```json" + `
{
    "anomaly": {
        "fact": "restatement of the observation",
        "surprise_level": "expected|mild|surprising|high|anomalous",
        "surprise_score": 0.0-1.0,
        "expected_baseline": "what would normally be expected",
        "domain": "%s",
        "context": ["context item 1", "context item 2"],
        "key_features": ["surprising feature 1", "surprising feature 2"],
        "surprise_source": "why this violates expectations",
        "recommended_council": ["Specialist Role 1", "Specialist Role 2", "Specialist Role 3"]
    }
}
` + "```"

// BuildObservation constructs the phase 1 instruction. The observation must
// be non-empty after trimming; unknown domains fall back to general rather
// than erroring.
func BuildObservation(req ObservationRequest) (*Instruction, error) {
	if strings.TrimSpace(req.Observation) == "" {
		return nil, &InputError{Field: "observation", Reason: "must be a non-empty description of the surprising fact"}
	}

	domain := registry.ParseDomain(req.Domain)
	context := req.Context
	if strings.TrimSpace(context) == "" {
		context = "No additional context provided."
	}

	prompt := fmt.Sprintf(observationTemplate,
		systemDirective,
		req.Observation,
		context,
		domain,
		registry.Guidance(domain),
		domain,
	)

	return newInstruction(
		PhaseObservation,
		prompt,
		schema.AnomalyID,
		OpHypotheses,
		"Execute this prompt with an LLM, then pass the anomaly JSON to "+OpHypotheses,
	), nil
}
