// Package testutil provides deterministic fixtures for exchange tests.
package testutil

import (
	"testing"

	"dwn-gateway/contracts/manifest"
	"dwn-gateway/internal/agent"
)

// Deterministic identities for tests.
const (
	IssuerDID    = "did:key:z6MkIssuer"
	ApplicantDID = "did:key:z6MkApplicant"
	StrangerDID  = "did:key:z6MkStranger"

	// Seed for the issuer session key; fixed so signatures are reproducible
	// across test runs.
	IssuerSeed = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"
)

// NewSession builds the deterministic issuer session.
func NewSession(t *testing.T) *agent.Session {
	t.Helper()
	session, err := agent.NewSession(IssuerDID, IssuerSeed)
	if err != nil {
		t.Fatalf("building test session: %v", err)
	}
	return session
}

// ManifestBuilder provides a fluent interface for building test manifests.
type ManifestBuilder struct {
	m manifest.CredentialManifest
}

// NewManifest starts a builder for a manifest with the given id and one
// output descriptor.
func NewManifest(id string) *ManifestBuilder {
	return &ManifestBuilder{m: manifest.CredentialManifest{
		ID:     id,
		Issuer: manifest.Issuer{ID: "did:key:z6MkOriginalIssuer", Name: "test issuer"},
		OutputDescriptors: []manifest.OutputDescriptor{
			{ID: id + "-output-0", Name: "TestCredential"},
		},
	}}
}

// WithOutputDescriptor appends an output descriptor.
func (b *ManifestBuilder) WithOutputDescriptor(id, name string) *ManifestBuilder {
	b.m.OutputDescriptors = append(b.m.OutputDescriptors, manifest.OutputDescriptor{ID: id, Name: name})
	return b
}

// WithPresentationDefinition sets the eligibility constraints.
func (b *ManifestBuilder) WithPresentationDefinition(def *manifest.PresentationDefinition) *ManifestBuilder {
	b.m.PresentationDefinition = def
	return b
}

// Build returns the manifest.
func (b *ManifestBuilder) Build() manifest.CredentialManifest {
	return b.m
}

// TypeConstraint is a presentation definition requiring one credential whose
// vc.type array contains credentialType.
func TypeConstraint(id, credentialType string) *manifest.PresentationDefinition {
	return &manifest.PresentationDefinition{
		ID: id,
		InputDescriptors: []manifest.InputDescriptor{{
			ID: id + "-input-0",
			Constraints: manifest.Constraints{
				Fields: []manifest.Field{{
					Path:   []string{"$.vc.type"},
					Filter: &manifest.Filter{Type: "string", Const: credentialType},
				}},
			},
		}},
	}
}
