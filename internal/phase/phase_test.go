package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/abductd/internal/registry"
	"github.com/fyrsmithlabs/abductd/internal/schema"
)

const testAnomalyJSON = `{
	"anomaly": {
		"fact": "Customer churn rate doubled in Q3",
		"surprise_level": "high",
		"surprise_score": 0.8,
		"expected_baseline": "5% quarterly churn",
		"domain": "financial",
		"context": ["No price changes", "NPS stable"],
		"key_features": ["doubling", "no leading indicator"],
		"surprise_source": "churn moved without any tracked driver moving",
		"recommended_council": ["Forensic Accountant", "Data Engineer", "Customer Success Lead"]
	}
}`

const testHypothesesJSON = `{
	"hypotheses": [
		{
			"id": "H1",
			"statement": "A silent billing failure is cancelling subscriptions",
			"explains_anomaly": "Failed renewals register as churn without any satisfaction signal",
			"prior_probability": 0.3
		},
		{
			"id": "H2",
			"statement": "A competitor is poaching a specific cohort",
			"explains_anomaly": "Cohort-level exits would not move aggregate NPS",
			"prior_probability": 0.25
		}
	]
}`

func TestBuildObservation(t *testing.T) {
	t.Run("rejects_empty_observation", func(t *testing.T) {
		_, err := BuildObservation(ObservationRequest{Observation: "   "})
		var inputErr *InputError
		require.ErrorAs(t, err, &inputErr)
		assert.Equal(t, "observation", inputErr.Field)
		assert.NotEmpty(t, inputErr.Hint())
	})

	t.Run("embeds_inputs_and_domain_guidance", func(t *testing.T) {
		ins, err := BuildObservation(ObservationRequest{
			Observation: "Server latency tripled overnight",
			Context:     "No deploys in the window",
			Domain:      "technical",
		})
		require.NoError(t, err)

		assert.Equal(t, "instruction", ins.Kind)
		assert.Equal(t, PhaseObservation, ins.Phase)
		assert.Equal(t, 1, ins.PhaseNumber)
		assert.Equal(t, schema.AnomalyID, ins.Schema)
		assert.Equal(t, OpHypotheses, ins.NextOperation)

		assert.Contains(t, ins.Prompt, "Server latency tripled overnight")
		assert.Contains(t, ins.Prompt, "No deploys in the window")
		assert.Contains(t, ins.Prompt, registry.Guidance(registry.DomainTechnical))
		assert.Contains(t, ins.Prompt, "recommended_council")
	})

	t.Run("unknown_domain_falls_back_to_general", func(t *testing.T) {
		ins, err := BuildObservation(ObservationRequest{
			Observation: "anything",
			Domain:      "astrology",
		})
		require.NoError(t, err)
		assert.Contains(t, ins.Prompt, registry.Guidance(registry.DomainGeneral))
	})

	t.Run("empty_context_gets_placeholder", func(t *testing.T) {
		ins, err := BuildObservation(ObservationRequest{Observation: "anything"})
		require.NoError(t, err)
		assert.Contains(t, ins.Prompt, "No additional context provided.")
	})

	t.Run("identical_inputs_identical_payloads", func(t *testing.T) {
		req := ObservationRequest{Observation: "x happened", Context: "ctx", Domain: "legal"}
		a, err := BuildObservation(req)
		require.NoError(t, err)
		b, err := BuildObservation(req)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestBuildHypotheses(t *testing.T) {
	t.Run("rejects_count_out_of_range", func(t *testing.T) {
		for _, count := range []int{0, -1, 21, 100} {
			_, err := BuildHypotheses(HypothesisRequest{AnomalyJSON: testAnomalyJSON, Count: count})
			var rangeErr *RangeError
			require.ErrorAs(t, err, &rangeErr, "count %d", count)
			assert.Equal(t, count, rangeErr.Value)
			assert.Equal(t, schema.MinHypotheses, rangeErr.Min)
			assert.Equal(t, schema.MaxHypotheses, rangeErr.Max)
		}
	})

	t.Run("accepts_boundary_counts", func(t *testing.T) {
		for _, count := range []int{1, 20} {
			_, err := BuildHypotheses(HypothesisRequest{AnomalyJSON: testAnomalyJSON, Count: count})
			assert.NoError(t, err, "count %d", count)
		}
	})

	t.Run("invalid_json_is_parse_error", func(t *testing.T) {
		_, err := BuildHypotheses(HypothesisRequest{AnomalyJSON: "not json {", Count: 5})
		var parseErr *schema.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "anomaly_json", parseErr.Field)
	})

	t.Run("valid_json_bad_shape_is_contract_error", func(t *testing.T) {
		_, err := BuildHypotheses(HypothesisRequest{AnomalyJSON: `{"anomaly": {"fact": ""}}`, Count: 5})
		var contractErr *schema.ContractError
		require.ErrorAs(t, err, &contractErr)
		assert.Equal(t, schema.AnomalyID, contractErr.Schema)
	})

	t.Run("embeds_count_fact_and_context", func(t *testing.T) {
		ins, err := BuildHypotheses(HypothesisRequest{AnomalyJSON: testAnomalyJSON, Count: 7})
		require.NoError(t, err)

		assert.Equal(t, PhaseHypothesis, ins.Phase)
		assert.Equal(t, 2, ins.PhaseNumber)
		assert.Equal(t, schema.HypothesisSetID, ins.Schema)
		assert.Equal(t, OpEvaluate, ins.NextOperation)

		assert.Contains(t, ins.Prompt, "Generate 7 explanatory hypotheses")
		assert.Contains(t, ins.Prompt, "Generate exactly 7 hypotheses")
		assert.Contains(t, ins.Prompt, "Customer churn rate doubled in Q3")
		assert.Contains(t, ins.Prompt, "- No price changes")
		assert.Contains(t, ins.Prompt, registry.Guidance(registry.DomainFinancial))
	})

	t.Run("wrapped_and_bare_anomaly_equivalent", func(t *testing.T) {
		bare := `{
			"fact": "Customer churn rate doubled in Q3",
			"surprise_level": "high",
			"domain": "financial",
			"context": ["No price changes", "NPS stable"]
		}`

		wrapped, err := BuildHypotheses(HypothesisRequest{AnomalyJSON: testAnomalyJSON, Count: 5})
		require.NoError(t, err)
		unwrapped, err := BuildHypotheses(HypothesisRequest{AnomalyJSON: bare, Count: 5})
		require.NoError(t, err)
		assert.Equal(t, wrapped.Prompt, unwrapped.Prompt)
	})
}

func TestBuildEvaluation(t *testing.T) {
	base := EvaluationRequest{AnomalyJSON: testAnomalyJSON, HypothesesJSON: testHypothesesJSON}

	t.Run("criteria_mode_uses_classical_keys", func(t *testing.T) {
		req := base
		ins, err := BuildEvaluation(req)
		require.NoError(t, err)

		assert.Equal(t, PhaseEvaluation, ins.Phase)
		assert.Equal(t, 3, ins.PhaseNumber)
		assert.Equal(t, schema.EvaluationID, ins.Schema)
		assert.Empty(t, ins.NextOperation)

		for _, key := range CriteriaKeys {
			assert.Contains(t, ins.Prompt, `"`+key+`": 0.0-1.0`)
		}
		assert.NotContains(t, ins.Prompt, "Council of Critics")
	})

	t.Run("council_mode_uses_default_roster", func(t *testing.T) {
		req := base
		req.Mode = ModeCouncil
		ins, err := BuildEvaluation(req)
		require.NoError(t, err)

		assert.Contains(t, ins.Prompt, "### The Empiricist")
		assert.Contains(t, ins.Prompt, "### The Skeptic")
		for _, role := range registry.DefaultCouncil {
			assert.Contains(t, ins.Prompt, `"`+role+`": 0.0-1.0`)
		}
	})

	t.Run("custom_roster_replaces_default_entirely", func(t *testing.T) {
		req := base
		req.Mode = ModeCustom
		req.Council = []string{"Forensic Accountant", "Security Engineer"}
		ins, err := BuildEvaluation(req)
		require.NoError(t, err)

		assert.Contains(t, ins.Prompt, "### The Forensic Accountant")
		assert.Contains(t, ins.Prompt, `"forensic_accountant": 0.0-1.0`)
		assert.Contains(t, ins.Prompt, `"security_engineer": 0.0-1.0`)
		assert.NotContains(t, ins.Prompt, `"empiricist": 0.0-1.0`)
	})

	t.Run("custom_mode_requires_roster", func(t *testing.T) {
		req := base
		req.Mode = ModeCustom
		_, err := BuildEvaluation(req)
		var inputErr *InputError
		require.ErrorAs(t, err, &inputErr)
		assert.Equal(t, "custom_council", inputErr.Field)
	})

	t.Run("embeds_verdict_vocabulary", func(t *testing.T) {
		ins, err := BuildEvaluation(base)
		require.NoError(t, err)
		for _, verdict := range schema.Verdicts {
			assert.Contains(t, ins.Prompt, `"`+verdict+`"`)
		}
	})

	t.Run("best_hypothesis_outside_set_rejected", func(t *testing.T) {
		req := base
		req.HypothesesJSON = `{
			"hypotheses": [{"id": "H1", "statement": "something"}],
			"best_hypothesis": "H9"
		}`
		_, err := BuildEvaluation(req)
		var contractErr *schema.ContractError
		require.ErrorAs(t, err, &contractErr)
		assert.Contains(t, contractErr.Error(), "H9")
	})

	t.Run("identical_inputs_identical_payloads", func(t *testing.T) {
		req := base
		req.Mode = ModeCouncil
		a, err := BuildEvaluation(req)
		require.NoError(t, err)
		b, err := BuildEvaluation(req)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("malformed_hypotheses_is_contract_error", func(t *testing.T) {
		req := base
		req.HypothesesJSON = `{"hypotheses": []}`
		_, err := BuildEvaluation(req)
		var contractErr *schema.ContractError
		require.ErrorAs(t, err, &contractErr)
		assert.Equal(t, schema.HypothesisSetID, contractErr.Schema)
	})
}

func TestScoreKeys(t *testing.T) {
	assert.Equal(t, CriteriaKeys, ScoreKeys(ModeCriteria, nil))
	assert.Equal(t, registry.DefaultCouncil, ScoreKeys(ModeCouncil, nil))
	assert.Equal(t,
		[]string{"forensic_accountant", "legal_counsel"},
		ScoreKeys(ModeCustom, []string{"Forensic Accountant", "Legal Counsel"}))
}

func TestBuildCritic(t *testing.T) {
	t.Run("named_critic_persona", func(t *testing.T) {
		ins, err := BuildCritic(CriticRequest{
			Critic:         "skeptic",
			AnomalyJSON:    testAnomalyJSON,
			HypothesesJSON: testHypothesesJSON,
		})
		require.NoError(t, err)

		assert.Equal(t, PhaseCritic, ins.Phase)
		assert.Equal(t, 0, ins.PhaseNumber)
		assert.Equal(t, schema.CritiqueID, ins.Schema)
		assert.Contains(t, ins.Prompt, "You are THE SKEPTIC on the Council of Critics.")
		assert.Contains(t, ins.Prompt, registry.Persona("skeptic"))
	})

	t.Run("blank_critic_falls_back", func(t *testing.T) {
		ins, err := BuildCritic(CriticRequest{
			Critic:         "   ",
			AnomalyJSON:    testAnomalyJSON,
			HypothesesJSON: testHypothesesJSON,
		})
		require.NoError(t, err)
		assert.Contains(t, ins.Prompt, "You are THE GENERAL_CRITIC on the Council of Critics.")
	})

	t.Run("arbitrary_role_accepted_verbatim", func(t *testing.T) {
		ins, err := BuildCritic(CriticRequest{
			Critic:         "forensic_accountant",
			AnomalyJSON:    testAnomalyJSON,
			HypothesesJSON: testHypothesesJSON,
		})
		require.NoError(t, err)
		assert.Contains(t, ins.Prompt, "FORENSIC_ACCOUNTANT")
		assert.Contains(t, ins.Prompt, `"perspective": "forensic_accountant"`)
	})
}

func TestBuildSingleShot(t *testing.T) {
	t.Run("validation_matches_sequenced_builders", func(t *testing.T) {
		_, err := BuildSingleShot(SingleShotRequest{Observation: "", Count: 5})
		var inputErr *InputError
		require.ErrorAs(t, err, &inputErr)

		_, err = BuildSingleShot(SingleShotRequest{Observation: "x", Count: 21})
		var rangeErr *RangeError
		require.ErrorAs(t, err, &rangeErr)
	})

	t.Run("fused_prompt_covers_all_three_phases", func(t *testing.T) {
		ins, err := BuildSingleShot(SingleShotRequest{
			Observation: "Customer churn rate doubled in Q3",
			Context:     "No price changes",
			Domain:      "financial",
			Count:       5,
		})
		require.NoError(t, err)

		assert.Equal(t, PhaseSingleShot, ins.Phase)
		assert.Equal(t, schema.AbductionID, ins.Schema)
		assert.Empty(t, ins.NextOperation)

		assert.Contains(t, ins.Prompt, "Phase 1: Analyze the Surprise")
		assert.Contains(t, ins.Prompt, "Generate 5 Hypotheses")
		assert.Contains(t, ins.Prompt, "Select Best Explanation (IBE)")
	})

	t.Run("identical_inputs_identical_payloads", func(t *testing.T) {
		req := SingleShotRequest{Observation: "x happened", Domain: "medical", Count: 3}
		a, err := BuildSingleShot(req)
		require.NoError(t, err)
		b, err := BuildSingleShot(req)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("shares_content_with_sequenced_flow", func(t *testing.T) {
		obs, err := BuildObservation(ObservationRequest{
			Observation: "Customer churn rate doubled in Q3",
			Domain:      "financial",
		})
		require.NoError(t, err)
		shot, err := BuildSingleShot(SingleShotRequest{
			Observation: "Customer churn rate doubled in Q3",
			Domain:      "financial",
			Count:       5,
		})
		require.NoError(t, err)

		guidance := registry.Guidance(registry.DomainFinancial)
		assert.Contains(t, obs.Prompt, guidance)
		assert.Contains(t, shot.Prompt, guidance)
		assert.Contains(t, shot.Prompt, systemDirective)
	})
}
