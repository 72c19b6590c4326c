package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwn-gateway/contracts/manifest"
)

func typeDefinition(credentialType string) *manifest.PresentationDefinition {
	return &manifest.PresentationDefinition{
		ID: "pd-1",
		InputDescriptors: []manifest.InputDescriptor{{
			ID: "input-0",
			Constraints: manifest.Constraints{
				Fields: []manifest.Field{{
					Path:   []string{"$.vc.type"},
					Filter: &manifest.Filter{Type: "string", Const: credentialType},
				}},
			},
		}},
	}
}

func TestSelectCredentialsFiltersByType(t *testing.T) {
	issuer := newSession(t, "did:key:issuer", testSeed)

	employment, err := Issue(issuer, "did:key:subject", "EmploymentCredential", nil)
	require.NoError(t, err)
	residence, err := Issue(issuer, "did:key:subject", "ResidenceCredential", nil)
	require.NoError(t, err)

	selected := SelectCredentials([]string{employment, residence}, typeDefinition("EmploymentCredential"))
	assert.Equal(t, []string{employment}, selected)
}

func TestSelectCredentialsNilDefinitionSelectsAll(t *testing.T) {
	tokens := []string{"a", "b"}
	assert.Equal(t, tokens, SelectCredentials(tokens, nil))
}

func TestSelectCredentialsPreservesOrder(t *testing.T) {
	issuer := newSession(t, "did:key:issuer", testSeed)

	first, err := Issue(issuer, "did:key:subject", "EmploymentCredential", nil)
	require.NoError(t, err)
	second, err := Issue(issuer, "did:key:subject", "EmploymentCredential", nil)
	require.NoError(t, err)

	selected := SelectCredentials([]string{first, "garbage", second}, typeDefinition("EmploymentCredential"))
	assert.Equal(t, []string{first, second}, selected)
}

func TestSatisfiesDefinition(t *testing.T) {
	issuer := newSession(t, "did:key:issuer", testSeed)

	employment, err := Issue(issuer, "did:key:subject", "EmploymentCredential", nil)
	require.NoError(t, err)

	assert.NoError(t, SatisfiesDefinition([]string{employment}, typeDefinition("EmploymentCredential")))
	assert.NoError(t, SatisfiesDefinition(nil, nil))

	err = SatisfiesDefinition([]string{employment}, typeDefinition("ResidenceCredential"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input descriptor")
}

func TestSatisfiesDefinitionPatternFilter(t *testing.T) {
	issuer := newSession(t, "did:key:issuer", testSeed)

	token, err := Issue(issuer, "did:key:subject", "EmploymentCredential", map[string]any{
		"employer": "Acme Corp",
	})
	require.NoError(t, err)

	def := &manifest.PresentationDefinition{
		ID: "pd-pattern",
		InputDescriptors: []manifest.InputDescriptor{{
			ID: "input-0",
			Constraints: manifest.Constraints{
				Fields: []manifest.Field{{
					Path:   []string{"$.vc.credentialSubject.employer"},
					Filter: &manifest.Filter{Type: "string", Pattern: "^Acme"},
				}},
			},
		}},
	}
	assert.NoError(t, SatisfiesDefinition([]string{token}, def))

	def.InputDescriptors[0].Constraints.Fields[0].Filter.Pattern = "^Globex"
	assert.Error(t, SatisfiesDefinition([]string{token}, def))
}

func TestSatisfiesDefinitionMissingPath(t *testing.T) {
	issuer := newSession(t, "did:key:issuer", testSeed)

	token, err := Issue(issuer, "did:key:subject", "EmploymentCredential", nil)
	require.NoError(t, err)

	def := &manifest.PresentationDefinition{
		ID: "pd-missing",
		InputDescriptors: []manifest.InputDescriptor{{
			ID: "input-0",
			Constraints: manifest.Constraints{
				Fields: []manifest.Field{{Path: []string{"$.vc.credentialSubject.salary"}}},
			},
		}},
	}
	assert.Error(t, SatisfiesDefinition([]string{token}, def))
}
