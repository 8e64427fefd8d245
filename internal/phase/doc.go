// Package phase builds the instruction payloads for the three-phase
// abductive reasoning protocol: Observe, Hypothesize, Evaluate.
//
// Each builder is a pure function from a typed request to an Instruction
// carrying the prompt text, the schema its response must satisfy, and the
// name of the operation to call next. Builders hold no state; the phase
// position lives entirely in the JSON artifacts the caller passes back in,
// so identical inputs always produce byte-identical instructions.
//
// The Runner is the one exception to purity: it drives the fused chain,
// executing each phase's instruction against a provider and parsing the
// response before building the next phase. It short-circuits on the first
// parse or contract failure and reports which phase failed.
package phase
