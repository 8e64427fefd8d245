package phase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/abductd/internal/registry"
	"github.com/fyrsmithlabs/abductd/internal/schema"
)

// EvalMode selects how phase 3 scores hypotheses.
type EvalMode int

const (
	// ModeCriteria scores against the five classical IBE criteria.
	ModeCriteria EvalMode = iota

	// ModeCouncil scores through the default five-critic council.
	ModeCouncil

	// ModeCustom scores through a caller-supplied roster, which replaces
	// the default council entirely.
	ModeCustom
)

// CriteriaKeys are the score dimensions used in criteria mode.
var CriteriaKeys = []string{
	"explanatory_power",
	"parsimony",
	"testability",
	"consilience",
	"fertility",
}

// EvaluationRequest carries both upstream artifacts and the scoring mode
// into phase 3.
type EvaluationRequest struct {
	AnomalyJSON    string
	HypothesesJSON string
	Mode           EvalMode
	Council        []string // roster for ModeCustom
}

const evaluationTemplate = `%s

TASK: Select the BEST EXPLANATION using Inference to Best Explanation (IBE).

## The Surprising Fact (C)
%s

## Candidate Hypotheses
%s

%s
## Verdict Options

- "accept": High confidence, proceed as if true
- "investigate": Promising, needs testing
- "defer": Insufficient information, gather more data
- "reject": Low confidence, unlikely to be true

## Output Schema

Respond with ONLY this JSON structure:
` + "```json" + `
{
    "evaluation": {
        "best_hypothesis": "H1",
        "scores": {
            "H1": {
                %s,
                "composite": 0.0-1.0,
                "rationale": "explanation for these scores"
            }
        },
        "ranking": ["H1", "H3", "H2"],
        "verdict": "investigate|accept|defer|reject",
        "confidence": 0.0-1.0,
        "rationale": "why this hypothesis was selected",
        "next_steps": ["action 1", "action 2"],
        "alternative_if_wrong": "fallback hypothesis and why"
    }
}
` + "```"

// BuildEvaluation constructs the phase 3 instruction. Both upstream
// artifacts are re-validated; a custom mode with an empty roster is
// rejected before any prompt is assembled.
func BuildEvaluation(req EvaluationRequest) (*Instruction, error) {
	if req.Mode == ModeCustom && len(req.Council) == 0 {
		return nil, &InputError{Field: "custom_council", Reason: "must name at least one critic role"}
	}

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

	keys, section := scoringSection(req.Mode, req.Council)

	prompt := fmt.Sprintf(evaluationTemplate,
		systemDirective,
		anomaly.Fact,
		string(formatted),
		section,
		scoreFields(keys),
	)

	return newInstruction(
		PhaseEvaluation,
		prompt,
		schema.EvaluationID,
		"",
		"Execute this prompt with an LLM. This is the final phase - output contains the selected hypothesis and recommended actions.",
	), nil
}

// ScoreKeys returns the score dimension keys phase 3 will demand for the
// given mode and roster. Used at the boundary to echo the contract and in
// tests to pin the key sets.
func ScoreKeys(mode EvalMode, council []string) []string {
	keys, _ := scoringSection(mode, council)
	return keys
}

func scoringSection(mode EvalMode, council []string) (keys []string, section string) {
	switch mode {
	case ModeCustom:
		var lens, scoring strings.Builder
		lens.WriteString("## Council of Critics Evaluation\n\n")
		lens.WriteString("Evaluate each hypothesis from the perspectives of these nominated specialists:\n\n")
		scoring.WriteString("## Council Scoring Criteria\n\n")
		scoring.WriteString("Score each hypothesis (0.0-1.0) based on the Specialist's perspective:\n\n")
		for _, role := range council {
			role = registry.ResolveCritic(role)
			keys = append(keys, scoreSlug(role))
			fmt.Fprintf(&lens, "### The %s\n%s\n\n", role, registry.Persona(role))
			fmt.Fprintf(&scoring, "%d. **%s Score**: Endorsement from the %s.\n", len(keys), role, role)
			scoring.WriteString("   - 1.0: Strongly endorsed by this domain expertise.\n")
			scoring.WriteString("   - 0.0: Rejected by this domain expertise.\n\n")
		}
		return keys, lens.String() + scoring.String()

	case ModeCouncil:
		var lens, scoring strings.Builder
		lens.WriteString("## Council of Critics Evaluation\n\n")
		lens.WriteString("Before scoring, evaluate each hypothesis from these perspectives:\n\n")
		scoring.WriteString("## Council Scoring Criteria\n\n")
		scoring.WriteString("Score each hypothesis (0.0-1.0) based on the Council's perspectives:\n\n")
		for _, role := range registry.DefaultCouncil {
			keys = append(keys, role)
			title := strings.ToUpper(role[:1]) + role[1:]
			fmt.Fprintf(&lens, "### The %s\n%s\n\n", title, registry.Persona(role))
			fmt.Fprintf(&scoring, "%d. **%s Score**: %s\n\n", len(keys), title, councilScoreBriefs[role])
		}
		lens.WriteString("Include a \"council\" section in your output with each critic's verdict.\n\n")
		return keys, lens.String() + scoring.String()

	default:
		keys = CriteriaKeys
		section = `## Evaluation Criteria

Score each hypothesis (0.0-1.0) on:
1. Explanatory Power
2. Parsimony
3. Testability
4. Consilience
5. Fertility

`
		return keys, section
	}
}

var councilScoreBriefs = map[string]string{
	"empiricist": "Fit with evidence and testability. 1.0 strongly supported and easily testable; 0.0 contradicted or unfalsifiable.",
	"logician":   "Internal consistency and parsimony. 1.0 perfectly consistent with minimal assumptions; 0.0 self-contradictory or ad hoc.",
	"pragmatist": "Actionability and utility. 1.0 clear path to action if true; 0.0 no clear action or irrelevant.",
	"economist":  "Cost-effectiveness. 1.0 cheap to verify with high value of information; 0.0 prohibitively expensive or low value.",
	"skeptic":    "Robustness under scrutiny. 1.0 withstands strong challenge with no simpler alternative; 0.0 easily debunked.",
}

func scoreSlug(role string) string {
	return strings.ReplaceAll(strings.ToLower(role), " ", "_")
}

func scoreFields(keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = fmt.Sprintf("%q: 0.0-1.0", k)
	}
	return strings.Join(quoted, ",\n                ")
}
