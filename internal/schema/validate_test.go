package schema

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validAnomaly = `{
	"anomaly": {
		"fact": "Server latency spiked 10x but CPU and memory are normal",
		"surprise_level": "high",
		"surprise_score": 0.85,
		"expected_baseline": "Latency correlates with resource usage",
		"domain": "technical",
		"context": ["No recent deployments", "Traffic is steady"],
		"key_features": ["Latency spike", "Normal CPU"],
		"surprise_source": "Violates expected correlation",
		"recommended_council": ["SRE", "Network Engineer", "DBA"]
	}
}`

const validHypotheses = `{
	"hypotheses": [
		{
			"id": "H1",
			"statement": "A downstream dependency is degrading silently",
			"explains_anomaly": "Latency would rise without local resource pressure",
			"prior_probability": 0.4,
			"assumptions": [{"statement": "The dependency is on the hot path", "testable": true}],
			"testable_predictions": [
				{
					"prediction": "Dependency p99 latency rose at the same time",
					"test_method": "Check dependency dashboards",
					"if_true": "Supports H1",
					"if_false": "Weakens H1"
				}
			]
		},
		{
			"id": "H2",
			"statement": "Connection pool exhaustion is queueing requests",
			"prior_probability": 0.3
		}
	]
}`

func TestParseAnomaly(t *testing.T) {
	t.Run("valid_wrapped", func(t *testing.T) {
		a, err := ParseAnomaly("anomaly_json", validAnomaly)
		require.NoError(t, err)
		assert.Equal(t, "high", a.SurpriseLevel)
		require.NotNil(t, a.SurpriseScore)
		assert.InDelta(t, 0.85, *a.SurpriseScore, 1e-9)
		assert.Len(t, a.RecommendedCouncil, 3)
	})

	t.Run("valid_bare", func(t *testing.T) {
		a, err := ParseAnomaly("anomaly_json", `{"fact": "birds fell silent at noon"}`)
		require.NoError(t, err)
		assert.Equal(t, "birds fell silent at noon", a.Fact)
	})

	t.Run("not_json_is_parse_error", func(t *testing.T) {
		_, err := ParseAnomaly("anomaly_json", "not json")
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "anomaly_json", perr.Field)
		assert.Contains(t, err.Error(), "anomaly_json")
	})

	t.Run("valid_json_wrong_shape_is_contract_error", func(t *testing.T) {
		_, err := ParseAnomaly("anomaly_json", `["an", "array"]`)
		var cerr *ContractError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, AnomalyID, cerr.Schema)
	})

	t.Run("empty_fact_is_contract_error", func(t *testing.T) {
		_, err := ParseAnomaly("anomaly_json", `{"anomaly": {"fact": "   "}}`)
		var cerr *ContractError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "fact", cerr.Violations[0].Path)
	})

	t.Run("score_out_of_range", func(t *testing.T) {
		_, err := ParseAnomaly("anomaly_json", `{"fact": "x", "surprise_score": 1.5}`)
		var cerr *ContractError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "surprise_score", cerr.Violations[0].Path)
	})

	t.Run("unknown_surprise_level", func(t *testing.T) {
		_, err := ParseAnomaly("anomaly_json", `{"fact": "x", "surprise_level": "astonishing"}`)
		var cerr *ContractError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "surprise_level", cerr.Violations[0].Path)
	})
}

func TestParseHypothesisSet(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		set, err := ParseHypothesisSet("hypotheses_json", validHypotheses)
		require.NoError(t, err)
		assert.Equal(t, []string{"H1", "H2"}, set.IDs())
		assert.True(t, set.Contains("H2"))
		assert.False(t, set.Contains("H9"))
	})

	t.Run("bare_array", func(t *testing.T) {
		set, err := ParseHypothesisSet("hypotheses_json",
			`[{"id": "H1", "statement": "cosmic rays"}]`)
		require.NoError(t, err)
		assert.Len(t, set.Hypotheses, 1)
	})

	t.Run("empty_set", func(t *testing.T) {
		_, err := ParseHypothesisSet("hypotheses_json", `{"hypotheses": []}`)
		var cerr *ContractError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("over_maximum", func(t *testing.T) {
		entries := make([]string, 0, MaxHypotheses+1)
		for i := 1; i <= MaxHypotheses+1; i++ {
			entries = append(entries, fmt.Sprintf(`{"id": "H%d", "statement": "candidate %d"}`, i, i))
		}
		payload := `{"hypotheses": [` + strings.Join(entries, ",") + `]}`

		_, err := ParseHypothesisSet("hypotheses_json", payload)
		var cerr *ContractError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Error(), fmt.Sprintf("maximum is %d", MaxHypotheses))
	})

	t.Run("at_maximum", func(t *testing.T) {
		entries := make([]string, 0, MaxHypotheses)
		for i := 1; i <= MaxHypotheses; i++ {
			entries = append(entries, fmt.Sprintf(`{"id": "H%d", "statement": "candidate %d"}`, i, i))
		}
		payload := `{"hypotheses": [` + strings.Join(entries, ",") + `]}`

		set, err := ParseHypothesisSet("hypotheses_json", payload)
		require.NoError(t, err)
		assert.Len(t, set.Hypotheses, MaxHypotheses)
	})

	t.Run("duplicate_ids", func(t *testing.T) {
		_, err := ParseHypothesisSet("hypotheses_json",
			`{"hypotheses": [{"id": "H1", "statement": "a"}, {"id": "H1", "statement": "b"}]}`)
		var cerr *ContractError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Error(), "not unique")
	})

	t.Run("best_reference_outside_set", func(t *testing.T) {
		_, err := ParseHypothesisSet("hypotheses_json",
			`{"hypotheses": [{"id": "H1", "statement": "a"}], "best_hypothesis": "H7"}`)
		var cerr *ContractError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "best_hypothesis", cerr.Violations[0].Path)
	})

	t.Run("prior_out_of_range", func(t *testing.T) {
		_, err := ParseHypothesisSet("hypotheses_json",
			`{"hypotheses": [{"id": "H1", "statement": "a", "prior_probability": -0.1}]}`)
		var cerr *ContractError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("not_json", func(t *testing.T) {
		_, err := ParseHypothesisSet("hypotheses_json", "{truncated")
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "hypotheses_json", perr.Field)
	})
}

func TestParseEvaluation(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		ev, err := ParseEvaluation("evaluation_json", `{
			"evaluation": {
				"best_hypothesis": "H1",
				"scores": {
					"H1": {"empiricist": 0.8, "skeptic": 0.6, "composite": 0.7, "rationale": "fits the data"},
					"H2": {"empiricist": 0.4, "skeptic": 0.5, "composite": 0.45}
				},
				"ranking": ["H1", "H2"],
				"verdict": "investigate",
				"confidence": 0.72,
				"rationale": "strongest fit",
				"next_steps": ["check dependency dashboards"]
			}
		}`)
		require.NoError(t, err)
		assert.Equal(t, "H1", ev.BestHypothesis)
		assert.InDelta(t, 0.8, ev.Scores["H1"].Dimensions["empiricist"], 1e-9)
		assert.Equal(t, "fits the data", ev.Scores["H1"].Rationale)
	})

	t.Run("missing_best_is_contract_error", func(t *testing.T) {
		_, err := ParseEvaluation("evaluation_json", `{"ranking": ["H1"]}`)
		var cerr *ContractError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("unknown_verdict", func(t *testing.T) {
		_, err := ParseEvaluation("evaluation_json",
			`{"best_hypothesis": "H1", "verdict": "maybe"}`)
		var cerr *ContractError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("score_wrong_shape", func(t *testing.T) {
		_, err := ParseEvaluation("evaluation_json",
			`{"best_hypothesis": "H1", "scores": {"H1": {"empiricist": "high"}}}`)
		var cerr *ContractError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Error(), "scores.H1.empiricist")
	})

	t.Run("violation_order_is_stable", func(t *testing.T) {
		payload := `{
			"best_hypothesis": "H1",
			"scores": {
				"H3": {"skeptic": 1.4},
				"H1": {"empiricist": -0.2},
				"H2": {"composite": 2.0}
			}
		}`

		_, err := ParseEvaluation("evaluation_json", payload)
		var cerr *ContractError
		require.ErrorAs(t, err, &cerr)

		paths := make([]string, len(cerr.Violations))
		for i, v := range cerr.Violations {
			paths[i] = v.Path
		}
		assert.Equal(t, []string{
			"scores.H1.empiricist",
			"scores.H2.composite",
			"scores.H3.skeptic",
		}, paths)

		for i := 0; i < 20; i++ {
			_, again := ParseEvaluation("evaluation_json", payload)
			assert.Equal(t, err.Error(), again.Error())
		}
	})
}

func TestEvaluationValidateAgainst(t *testing.T) {
	set, err := ParseHypothesisSet("hypotheses_json", validHypotheses)
	require.NoError(t, err)

	t.Run("consistent", func(t *testing.T) {
		ev := &Evaluation{BestHypothesis: "H1", Ranking: []string{"H2", "H1"}}
		assert.NoError(t, ev.ValidateAgainst("evaluation_json", set))
	})

	t.Run("best_outside_set", func(t *testing.T) {
		ev := &Evaluation{BestHypothesis: "H9"}
		err := ev.ValidateAgainst("evaluation_json", set)
		var cerr *ContractError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "best_hypothesis", cerr.Violations[0].Path)
	})

	t.Run("ranking_not_permutation", func(t *testing.T) {
		ev := &Evaluation{BestHypothesis: "H1", Ranking: []string{"H1", "H1"}}
		err := ev.ValidateAgainst("evaluation_json", set)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "permutation")
	})

	t.Run("score_key_outside_set", func(t *testing.T) {
		ev := &Evaluation{
			BestHypothesis: "H1",
			Scores:         map[string]ScoreCard{"H5": {}},
		}
		err := ev.ValidateAgainst("evaluation_json", set)
		require.Error(t, err)
	})
}

func TestStripFences(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"no_fence", `{"a": 1}`, `{"a": 1}`},
		{"json_fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare_fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding_whitespace", "  ```json\n{\"a\": 1}\n```  ", `{"a": 1}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripFences(tc.in))
		})
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	_, parseErr := ParseAnomaly("anomaly_json", "nope")
	_, contractErr := ParseAnomaly("anomaly_json", `{"fact": ""}`)

	var perr *ParseError
	var cerr *ContractError
	assert.True(t, errors.As(parseErr, &perr))
	assert.False(t, errors.As(parseErr, &cerr))
	assert.True(t, errors.As(contractErr, &cerr))
	assert.False(t, errors.As(contractErr, &perr))
}
