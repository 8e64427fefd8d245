package phase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/abductd/internal/registry"
	"github.com/fyrsmithlabs/abductd/internal/schema"
)

// CriticRequest asks for one critic's reading of a hypothesis set. Any role
// name is accepted; blank names resolve to the fallback persona.
type CriticRequest struct {
	Critic         string
	AnomalyJSON    string
	HypothesesJSON string
}

const criticTemplate = `You are THE %s on the Council of Critics.

Your role: Evaluate hypotheses based on the specific expertise, concerns, and methodology of a %s.

## The Surprising Fact
%s

## Hypotheses
%s

## Your Evaluation

%s

Output ONLY this JSON:
` + "```json" + `
{
    "perspective": "%s",
    "evaluation": "overall assessment from this perspective",
    "per_hypothesis": {
        "H1": {
            "strengths": ["point 1"],
            "weaknesses": ["point 1"],
            "score": 0.0-1.0
        }
    },
    "strongest_hypothesis": "H1",
    "concerns": ["concern 1"]
}
` + "```"

// BuildCritic constructs a single-perspective evaluation instruction.
func BuildCritic(req CriticRequest) (*Instruction, error) {
	critic := registry.ResolveCritic(req.Critic)

	anomaly, err := schema.ParseAnomaly("anomaly_json", req.AnomalyJSON)
	if err != nil {
		return nil, err
	}
	set, err := schema.ParseHypothesisSet("hypotheses_json", req.HypothesesJSON)
	if err != nil {
		return nil, err
	}

	formatted, err := json.MarshalIndent(set.Hypotheses, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("format hypotheses: %w", err)
	}

	prompt := fmt.Sprintf(criticTemplate,
		strings.ToUpper(critic),
		critic,
		anomaly.Fact,
		string(formatted),
		registry.Persona(critic),
		critic,
	)

	return newInstruction(
		PhaseCritic,
		prompt,
		schema.CritiqueID,
		"",
		fmt.Sprintf("Execute this prompt to get the %s's perspective.", critic),
	), nil
}
