package registry

import "strings"

// Domain is a closed-vocabulary classification selecting which guidance text
// is embedded in an instruction.
type Domain string

const (
	DomainGeneral    Domain = "general"
	DomainFinancial  Domain = "financial"
	DomainLegal      Domain = "legal"
	DomainMedical    Domain = "medical"
	DomainTechnical  Domain = "technical"
	DomainScientific Domain = "scientific"
)

// Domains lists the closed domain vocabulary.
var Domains = []Domain{
	DomainGeneral,
	DomainFinancial,
	DomainLegal,
	DomainMedical,
	DomainTechnical,
	DomainScientific,
}

// ParseDomain resolves a caller-supplied domain key. Unknown or empty keys
// resolve to the general domain rather than erroring.
func ParseDomain(key string) Domain {
	d := Domain(strings.ToLower(strings.TrimSpace(key)))
	for _, known := range Domains {
		if d == known {
			return d
		}
	}
	return DomainGeneral
}

// Guidance returns the hypothesis-generation guidance text for a domain.
func Guidance(d Domain) string {
	if text, ok := domainGuidance[d]; ok {
		return text
	}
	return domainGuidance[DomainGeneral]
}

var domainGuidance = map[Domain]string{
	DomainGeneral: `Consider hypotheses from multiple categories:
- Causal (direct cause-effect)
- Systemic (emergent from system interactions)
- Human factors (error, intention, miscommunication)
- External factors (environment, third parties)
- Measurement/observation error`,

	DomainFinancial: `Consider financial-specific hypothesis types:
- Market microstructure (liquidity, order flow, market making)
- Information asymmetry (insider knowledge, information leakage)
- Behavioral factors (sentiment, herding, overreaction)
- Macro factors (policy changes, economic indicators)
- Technical factors (algorithmic trading, index rebalancing)
- Manipulation (spoofing, wash trading, pump-and-dump)
- Structural (ETF flows, options gamma, short covering)`,

	DomainLegal: `Consider legal-specific hypothesis types:
- Statutory interpretation gaps
- Precedent conflicts or gaps
- Jurisdictional issues
- Procedural irregularities
- Factual ambiguities
- Intent/mens rea questions
- Evidentiary issues`,

	DomainMedical: `Consider medical-specific hypothesis types:
- Differential diagnoses
- Drug interactions
- Comorbidity effects
- Rare conditions (zebras)
- Diagnostic errors (false positives/negatives)
- Atypical presentations
- Environmental/lifestyle factors
- Genetic factors`,

	DomainTechnical: `Consider technical-specific hypothesis types:
- Race conditions and timing issues
- Resource exhaustion (memory, connections, file handles)
- Configuration drift
- Cascading failures
- Network partitions
- Data corruption
- Third-party service failures
- Version incompatibilities
- Security incidents`,

	DomainScientific: `Consider scientific-specific hypothesis types:
- Measurement error
- Confounding variables
- Selection bias
- Publication bias (negative results)
- Replication issues
- Theoretical model limitations
- Novel phenomena
- Instrumentation artifacts`,
}
