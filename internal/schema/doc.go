// Package schema defines the three JSON contracts exchanged between reasoning
// phases (Anomaly, HypothesisSet, Evaluation) and validates documents against
// them.
//
// Parsing and contract checking are distinct failure kinds: a ParseError means
// the supplied text is not syntactically valid JSON, a ContractError means the
// JSON parsed but does not satisfy the expected shape. Callers branch on the
// two with errors.As. Validation never panics on malformed input.
package schema
