package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDomain(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		want Domain
	}{
		{"known_key", "technical", DomainTechnical},
		{"mixed_case", "Financial", DomainFinancial},
		{"padded", "  medical  ", DomainMedical},
		{"unknown_falls_back_to_general", "astrological", DomainGeneral},
		{"empty_falls_back_to_general", "", DomainGeneral},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseDomain(tc.key))
		})
	}
}

func TestGuidanceNonEmptyForAllDomains(t *testing.T) {
	for _, d := range Domains {
		t.Run(string(d), func(t *testing.T) {
			assert.NotEmpty(t, Guidance(d))
		})
	}
}

func TestGuidanceUnknownDomainReturnsGeneral(t *testing.T) {
	assert.Equal(t, Guidance(DomainGeneral), Guidance(Domain("martian")))
}

func TestResolveCritic(t *testing.T) {
	assert.Equal(t, "forensic accountant", ResolveCritic("forensic accountant"))
	assert.Equal(t, "skeptic", ResolveCritic("  skeptic  "))
	assert.Equal(t, FallbackCritic, ResolveCritic(""))
	assert.Equal(t, FallbackCritic, ResolveCritic("   "))
}

func TestPersona(t *testing.T) {
	t.Run("default_critics_have_fixed_briefs", func(t *testing.T) {
		for _, role := range DefaultCouncil {
			assert.NotEmpty(t, Persona(role))
			assert.NotContains(t, Persona(role), "perspective of a "+role,
				"default critics should not use the generic brief")
		}
	})

	t.Run("custom_role_gets_generic_brief", func(t *testing.T) {
		brief := Persona("Security Engineer")
		assert.Contains(t, brief, "Security Engineer")
	})

	t.Run("blank_role_uses_fallback", func(t *testing.T) {
		brief := Persona("   ")
		assert.Contains(t, brief, FallbackCritic)
	})
}
