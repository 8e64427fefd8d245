package phase

import "fmt"

// InputError reports a request field that is missing or unusable before any
// prompt is built. Field names the wire-level input field.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %q: %s", e.Field, e.Reason)
}

// Hint tells the caller how to repair the request.
func (e *InputError) Hint() string {
	return fmt.Sprintf("provide a valid %q value and retry", e.Field)
}

// RangeError reports a numeric field outside its closed interval. Values
// outside the range are rejected, never clamped.
type RangeError struct {
	Field    string
	Value    int
	Min, Max int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

func (e *RangeError) Hint() string {
	return fmt.Sprintf("choose %s between %d and %d", e.Field, e.Min, e.Max)
}
