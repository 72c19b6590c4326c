package credential

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwn-gateway/internal/agent"
)

const (
	testSeed    = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"
	anotherSeed = "4ccd089b28ff96da9db6c346ec114e0f5b8a319f35aba624da8cf6ed4fb8a6fb"
)

func newSession(t *testing.T, did, seed string) *agent.Session {
	t.Helper()
	session, err := agent.NewSession(did, seed)
	require.NoError(t, err)
	return session
}

func resolverFor(sessions ...*agent.Session) KeyResolver {
	return func(_ context.Context, issuerDID string) (ed25519.PublicKey, error) {
		for _, s := range sessions {
			if s.DID() == issuerDID {
				return s.PublicKey(), nil
			}
		}
		return nil, fmt.Errorf("unknown issuer %s", issuerDID)
	}
}

func TestIssueAndParse(t *testing.T) {
	issuer := newSession(t, "did:key:issuer", testSeed)

	token, err := Issue(issuer, "did:key:subject", "EmploymentCredential", map[string]any{
		"employer": "Acme",
	})
	require.NoError(t, err)

	parsed, err := Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "did:key:subject", parsed.Subject)
	assert.Equal(t, "did:key:issuer", parsed.Issuer)
	assert.Equal(t, []string{"VerifiableCredential", "EmploymentCredential"}, parsed.Claims.VC.Type)
	assert.Equal(t, "Acme", parsed.Claims.VC.CredentialSubject["employer"])
	assert.Equal(t, "did:key:subject", parsed.Claims.VC.CredentialSubject["id"])
}

func TestIssueRequiresType(t *testing.T) {
	issuer := newSession(t, "did:key:issuer", testSeed)

	_, err := Issue(issuer, "did:key:subject", "", nil)
	assert.Error(t, err)
}

func TestVerifyRoundTrip(t *testing.T) {
	issuer := newSession(t, "did:key:issuer", testSeed)

	token, err := Issue(issuer, "did:key:subject", "EmploymentCredential", nil)
	require.NoError(t, err)

	verified, err := Verify(context.Background(), token, resolverFor(issuer))
	require.NoError(t, err)
	assert.True(t, verified.Verified)
	assert.Equal(t, "did:key:subject", verified.Subject)
	assert.Equal(t, "did:key:issuer", verified.Issuer)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	issuer := newSession(t, "did:key:issuer", testSeed)
	imposter := newSession(t, "did:key:issuer", anotherSeed)

	token, err := Issue(issuer, "did:key:subject", "EmploymentCredential", nil)
	require.NoError(t, err)

	// Resolver returns the imposter's key for the issuer DID.
	_, err = Verify(context.Background(), token, resolverFor(imposter))
	assert.Error(t, err)
}

func TestVerifyRejectsUnresolvableIssuer(t *testing.T) {
	issuer := newSession(t, "did:key:issuer", testSeed)

	token, err := Issue(issuer, "did:key:subject", "EmploymentCredential", nil)
	require.NoError(t, err)

	_, err = Verify(context.Background(), token, resolverFor())
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not-a-jwt")
	assert.Error(t, err)
}
