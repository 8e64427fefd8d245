package schema

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// StripFences removes a surrounding markdown code fence from model output.
// Language models frequently wrap JSON responses in ```json blocks even when
// told not to; the chain tolerates the fence but nothing else.
func StripFences(s string) string {
	text := strings.TrimSpace(s)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// syntaxCheck returns a ParseError when text is not valid JSON at all.
// Shape mismatches on valid JSON are the ContractError's territory.
func syntaxCheck(field, text string) error {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return &ParseError{Field: field, Err: err}
	}
	return nil
}

func shapeError(field string, id ID, err error) *ContractError {
	return &ContractError{
		Schema: id,
		Field:  field,
		Violations: []Violation{
			{Message: "wrong value shape: " + err.Error()},
		},
	}
}

// ParseAnomaly parses and validates a phase 1 document. The document may be
// wrapped under an "anomaly" key or supplied bare. field names the input
// parameter for error reporting.
func ParseAnomaly(field, text string) (*Anomaly, error) {
	if err := syntaxCheck(field, text); err != nil {
		return nil, err
	}
	var wrapper struct {
		Anomaly *Anomaly `json:"anomaly"`
	}
	if err := json.Unmarshal([]byte(text), &wrapper); err != nil {
		return nil, shapeError(field, AnomalyID, err)
	}
	a := wrapper.Anomaly
	if a == nil {
		a = &Anomaly{}
		if err := json.Unmarshal([]byte(text), a); err != nil {
			return nil, shapeError(field, AnomalyID, err)
		}
	}
	if violations := a.violations(); len(violations) > 0 {
		return nil, &ContractError{Schema: AnomalyID, Field: field, Violations: violations}
	}
	return a, nil
}

func (a *Anomaly) violations() []Violation {
	var vs []Violation
	if strings.TrimSpace(a.Fact) == "" {
		vs = append(vs, Violation{Path: "fact", Message: "must be non-empty"})
	}
	if a.SurpriseLevel != "" && !slices.Contains(SurpriseLevels, a.SurpriseLevel) {
		vs = append(vs, Violation{
			Path:    "surprise_level",
			Message: fmt.Sprintf("%q is not one of %s", a.SurpriseLevel, strings.Join(SurpriseLevels, "|")),
		})
	}
	if a.SurpriseScore != nil && (*a.SurpriseScore < 0 || *a.SurpriseScore > 1) {
		vs = append(vs, Violation{
			Path:    "surprise_score",
			Message: fmt.Sprintf("%v is outside [0,1]", *a.SurpriseScore),
		})
	}
	return vs
}

// ParseHypothesisSet parses and validates a phase 2 document. Accepts either
// a {"hypotheses": [...]} wrapper or a bare array. A best_hypothesis
// reference carried alongside the set must resolve within it.
func ParseHypothesisSet(field, text string) (*HypothesisSet, error) {
	if err := syntaxCheck(field, text); err != nil {
		return nil, err
	}
	set := &HypothesisSet{}
	if err := json.Unmarshal([]byte(text), set); err != nil {
		// Bare array form.
		var hs []Hypothesis
		if arrErr := json.Unmarshal([]byte(text), &hs); arrErr != nil {
			return nil, shapeError(field, HypothesisSetID, err)
		}
		set = &HypothesisSet{Hypotheses: hs}
	}
	if violations := set.violations(); len(violations) > 0 {
		return nil, &ContractError{Schema: HypothesisSetID, Field: field, Violations: violations}
	}
	return set, nil
}

func (s *HypothesisSet) violations() []Violation {
	var vs []Violation
	if len(s.Hypotheses) < MinHypotheses {
		vs = append(vs, Violation{Path: "hypotheses", Message: "must contain at least one hypothesis"})
	}
	if len(s.Hypotheses) > MaxHypotheses {
		vs = append(vs, Violation{
			Path:    "hypotheses",
			Message: fmt.Sprintf("contains %d hypotheses, maximum is %d", len(s.Hypotheses), MaxHypotheses),
		})
	}
	seen := make(map[string]bool, len(s.Hypotheses))
	for i, h := range s.Hypotheses {
		path := fmt.Sprintf("hypotheses[%d]", i)
		if h.ID == "" {
			vs = append(vs, Violation{Path: path + ".id", Message: "must be non-empty"})
			continue
		}
		if seen[h.ID] {
			vs = append(vs, Violation{Path: path + ".id", Message: fmt.Sprintf("%q is not unique within the set", h.ID)})
		}
		seen[h.ID] = true
		if strings.TrimSpace(h.Statement) == "" {
			vs = append(vs, Violation{Path: path + ".statement", Message: "must be non-empty"})
		}
		if h.PriorProbability != nil && (*h.PriorProbability < 0 || *h.PriorProbability > 1) {
			vs = append(vs, Violation{
				Path:    path + ".prior_probability",
				Message: fmt.Sprintf("%v is outside [0,1]", *h.PriorProbability),
			})
		}
	}
	if s.BestHypothesis != "" && !seen[s.BestHypothesis] {
		vs = append(vs, Violation{
			Path:    "best_hypothesis",
			Message: fmt.Sprintf("%q does not name a hypothesis in the set", s.BestHypothesis),
		})
	}
	return vs
}

// ParseEvaluation parses and validates a phase 3 document in isolation.
// Reference checks against the hypothesis set are done by ValidateAgainst.
func ParseEvaluation(field, text string) (*Evaluation, error) {
	if err := syntaxCheck(field, text); err != nil {
		return nil, err
	}
	var wrapper struct {
		Evaluation *Evaluation `json:"evaluation"`
	}
	if err := json.Unmarshal([]byte(text), &wrapper); err != nil {
		return nil, shapeError(field, EvaluationID, err)
	}
	ev := wrapper.Evaluation
	if ev == nil {
		ev = &Evaluation{}
		if err := json.Unmarshal([]byte(text), ev); err != nil {
			return nil, shapeError(field, EvaluationID, err)
		}
	}
	if violations := ev.violations(); len(violations) > 0 {
		return nil, &ContractError{Schema: EvaluationID, Field: field, Violations: violations}
	}
	return ev, nil
}

func (e *Evaluation) violations() []Violation {
	var vs []Violation
	if e.BestHypothesis == "" {
		vs = append(vs, Violation{Path: "best_hypothesis", Message: "must be non-empty"})
	}
	if e.Verdict != "" && !slices.Contains(Verdicts, e.Verdict) {
		vs = append(vs, Violation{
			Path:    "verdict",
			Message: fmt.Sprintf("%q is not one of %s", e.Verdict, strings.Join(Verdicts, "|")),
		})
	}
	if e.Confidence != nil && (*e.Confidence < 0 || *e.Confidence > 1) {
		vs = append(vs, Violation{
			Path:    "confidence",
			Message: fmt.Sprintf("%v is outside [0,1]", *e.Confidence),
		})
	}
	// Map iteration order is random; sort so identical input yields a
	// byte-identical error payload.
	for _, id := range sortedScoreIDs(e.Scores) {
		card := e.Scores[id]
		for _, k := range card.malformed {
			vs = append(vs, Violation{
				Path:    fmt.Sprintf("scores.%s.%s", id, k),
				Message: "has the wrong value shape",
			})
		}
		for _, dim := range sortedKeys(card.Dimensions) {
			if v := card.Dimensions[dim]; v < 0 || v > 1 {
				vs = append(vs, Violation{
					Path:    fmt.Sprintf("scores.%s.%s", id, dim),
					Message: fmt.Sprintf("%v is outside [0,1]", v),
				})
			}
		}
		if card.Composite != nil && (*card.Composite < 0 || *card.Composite > 1) {
			vs = append(vs, Violation{
				Path:    fmt.Sprintf("scores.%s.composite", id),
				Message: fmt.Sprintf("%v is outside [0,1]", *card.Composite),
			})
		}
	}
	return vs
}

// ValidateAgainst checks the evaluation's references against the hypothesis
// set it ranks: the selected identifier must be a member of the set and the
// ranking, when present, must be a permutation of the set's identifiers.
func (e *Evaluation) ValidateAgainst(field string, set *HypothesisSet) error {
	var vs []Violation
	if e.BestHypothesis != "" && !set.Contains(e.BestHypothesis) {
		vs = append(vs, Violation{
			Path:    "best_hypothesis",
			Message: fmt.Sprintf("%q does not name a hypothesis in the set", e.BestHypothesis),
		})
	}
	if len(e.Ranking) > 0 {
		want := set.IDs()
		got := slices.Clone(e.Ranking)
		slices.Sort(want)
		slices.Sort(got)
		if !slices.Equal(want, got) {
			vs = append(vs, Violation{
				Path:    "ranking",
				Message: "is not a permutation of the hypothesis identifiers",
			})
		}
	}
	for _, id := range sortedScoreIDs(e.Scores) {
		if !set.Contains(id) {
			vs = append(vs, Violation{
				Path:    "scores." + id,
				Message: "does not name a hypothesis in the set",
			})
		}
	}
	if len(vs) > 0 {
		return &ContractError{Schema: EvaluationID, Field: field, Violations: vs}
	}
	return nil
}

func sortedScoreIDs(scores map[string]ScoreCard) []string {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
