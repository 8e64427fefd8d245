package schema

import "encoding/json"

// ID names one of the phase contracts.
type ID string

const (
	// AnomalyID is the contract for phase 1 output.
	AnomalyID ID = "anomaly"

	// HypothesisSetID is the contract for phase 2 output.
	HypothesisSetID ID = "hypothesis_set"

	// EvaluationID is the contract for phase 3 output.
	EvaluationID ID = "evaluation"

	// AbductionID is the contract for the fused single-shot output, which
	// carries all three phase artifacts in one document.
	AbductionID ID = "abduction"

	// CritiqueID is the contract for a single critic's per-hypothesis
	// assessment.
	CritiqueID ID = "critique"
)

// Hypothesis set size bounds. Out-of-range requests are rejected, never
// clamped.
const (
	MinHypotheses = 1
	MaxHypotheses = 20
)

// SurpriseLevels is the closed vocabulary for anomaly surprise
// classification, ordered from least to most surprising.
var SurpriseLevels = []string{"expected", "mild", "surprising", "high", "anomalous"}

// Verdicts is the closed vocabulary for evaluation verdict tags.
var Verdicts = []string{"accept", "investigate", "defer", "reject"}

// Anomaly is the registered surprising fact produced by phase 1.
// Immutable once constructed; consumed as input to phase 2.
type Anomaly struct {
	Fact               string   `json:"fact"`
	SurpriseLevel      string   `json:"surprise_level,omitempty"`
	SurpriseScore      *float64 `json:"surprise_score,omitempty"`
	ExpectedBaseline   string   `json:"expected_baseline,omitempty"`
	Domain             string   `json:"domain,omitempty"`
	Context            []string `json:"context,omitempty"`
	KeyFeatures        []string `json:"key_features,omitempty"`
	SurpriseSource     string   `json:"surprise_source,omitempty"`
	RecommendedCouncil []string `json:"recommended_council,omitempty"`
}

// Assumption is a single premise a hypothesis depends on.
type Assumption struct {
	Statement string `json:"statement"`
	Testable  bool   `json:"testable"`
}

// Prediction is a falsifiable consequence of a hypothesis.
type Prediction struct {
	Prediction string `json:"prediction"`
	TestMethod string `json:"test_method,omitempty"`
	IfTrue     string `json:"if_true,omitempty"`
	IfFalse    string `json:"if_false,omitempty"`
}

// Hypothesis is one candidate explanation within a bounded set.
type Hypothesis struct {
	ID                  string       `json:"id"`
	Statement           string       `json:"statement"`
	ExplainsAnomaly     string       `json:"explains_anomaly,omitempty"`
	PriorProbability    *float64     `json:"prior_probability,omitempty"`
	Assumptions         []Assumption `json:"assumptions,omitempty"`
	TestablePredictions []Prediction `json:"testable_predictions,omitempty"`
}

// HypothesisSet is the full phase 2 artifact. BestHypothesis is optional:
// some callers pass back combined documents that already reference a
// selection, and that reference must resolve within the set.
type HypothesisSet struct {
	Hypotheses     []Hypothesis `json:"hypotheses"`
	BestHypothesis string       `json:"best_hypothesis,omitempty"`
}

// IDs returns the hypothesis identifiers in set order.
func (s *HypothesisSet) IDs() []string {
	ids := make([]string, 0, len(s.Hypotheses))
	for _, h := range s.Hypotheses {
		ids = append(ids, h.ID)
	}
	return ids
}

// Contains reports whether id names a hypothesis in the set.
func (s *HypothesisSet) Contains(id string) bool {
	for _, h := range s.Hypotheses {
		if h.ID == id {
			return true
		}
	}
	return false
}

// ScoreCard is the per-hypothesis score breakdown: a map of scoring
// dimensions (IBE criteria or critic names, depending on evaluation mode)
// to values in [0,1], plus an optional composite and rationale.
type ScoreCard struct {
	Dimensions map[string]float64
	Composite  *float64
	Rationale  string

	// malformed collects keys whose values had the wrong shape, surfaced
	// as contract violations during validation.
	malformed []string
}

// UnmarshalJSON decodes a score card, tolerating unknown dimension names
// (critic rosters are open-ended) but recording non-numeric values for
// contract checking.
func (c *ScoreCard) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.Dimensions = make(map[string]float64, len(raw))
	for k, v := range raw {
		switch k {
		case "rationale":
			s, ok := v.(string)
			if !ok {
				c.malformed = append(c.malformed, k)
				continue
			}
			c.Rationale = s
		case "composite":
			f, ok := v.(float64)
			if !ok {
				c.malformed = append(c.malformed, k)
				continue
			}
			c.Composite = &f
		default:
			f, ok := v.(float64)
			if !ok {
				c.malformed = append(c.malformed, k)
				continue
			}
			c.Dimensions[k] = f
		}
	}
	return nil
}

// MarshalJSON encodes the card back into its flat wire shape.
func (c ScoreCard) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Dimensions)+2)
	for k, v := range c.Dimensions {
		out[k] = v
	}
	if c.Composite != nil {
		out["composite"] = *c.Composite
	}
	if c.Rationale != "" {
		out["rationale"] = c.Rationale
	}
	return json.Marshal(out)
}

// Evaluation is the terminal phase 3 artifact ranking a hypothesis set.
type Evaluation struct {
	BestHypothesis     string               `json:"best_hypothesis"`
	Scores             map[string]ScoreCard `json:"scores,omitempty"`
	Ranking            []string             `json:"ranking,omitempty"`
	Verdict            string               `json:"verdict,omitempty"`
	Confidence         *float64             `json:"confidence,omitempty"`
	Rationale          string               `json:"rationale,omitempty"`
	NextSteps          []string             `json:"next_steps,omitempty"`
	AlternativeIfWrong string               `json:"alternative_if_wrong,omitempty"`
}
