package registry

import "strings"

// FallbackCritic is the persona used when a critic name is empty or blank.
const FallbackCritic = "general_critic"

// DefaultCouncil is the fixed five-critic roster used when multi-perspective
// evaluation is requested without a custom roster. A caller-supplied roster
// replaces these entirely; they are never merged.
var DefaultCouncil = []string{
	"empiricist",
	"logician",
	"pragmatist",
	"economist",
	"skeptic",
}

// ResolveCritic normalizes a caller-supplied critic role name. Blank names
// resolve to the fallback persona; anything else is used verbatim as a
// persona label without plausibility checks.
func ResolveCritic(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return FallbackCritic
	}
	return trimmed
}

// Persona returns the evaluation-lens brief for a critic role: the questions
// that role asks of a hypothesis set. The five default critics carry fixed
// briefs; any other role gets a generic brief derived from its name.
func Persona(role string) string {
	role = ResolveCritic(role)
	if brief, ok := criticBriefs[role]; ok {
		return brief
	}
	return "- How does this look from the perspective of a " + role + "?\n" +
		"- What specific evidence or logic supports or refutes each hypothesis in your domain?\n" +
		"- What would you recommend checking first?"
}

var criticBriefs = map[string]string{
	"empiricist": `- What empirical evidence supports or refutes each hypothesis?
- What observations would we expect if each were true?
- What data is missing that would be decisive?`,

	"logician": `- Is each hypothesis internally consistent?
- Does it contradict any known facts?
- Does the explanation actually follow from the hypothesis?`,

	"pragmatist": `- What practical difference does each hypothesis make?
- If true, what should we DO differently?
- Which hypothesis is most actionable?`,

	"economist": `- Which hypothesis is cheapest to test?
- Which would be most informative if confirmed or refuted?
- What's the expected value of investigating each?`,

	"skeptic": `- What would DISPROVE each hypothesis?
- What are we assuming without justification?
- Could this be explained more simply?`,
}
