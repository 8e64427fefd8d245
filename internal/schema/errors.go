package schema

import (
	"fmt"
	"strings"
)

// ParseError reports that a supplied prior-phase document is not
// syntactically valid JSON. Field names the offending parameter.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s is not valid JSON: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Hint tells the caller how to recover.
func (e *ParseError) Hint() string {
	return fmt.Sprintf("pass the raw JSON output of the previous phase as %s", e.Field)
}

// Violation is one specific way a document fails its contract.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// ContractError reports that a document parsed as JSON but does not satisfy
// the named schema. It always carries the specific violations, never a
// generic failure.
type ContractError struct {
	Schema     ID
	Field      string
	Violations []Violation
}

func (e *ContractError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("%s does not satisfy the %s contract: %s",
		e.Field, e.Schema, strings.Join(msgs, "; "))
}

// Hint tells the caller how to recover.
func (e *ContractError) Hint() string {
	return fmt.Sprintf("correct the listed fields so %s conforms to the %s schema", e.Field, e.Schema)
}
