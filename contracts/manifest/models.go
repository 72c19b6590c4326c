package manifest

// Package manifest hosts the stable DTOs for credential manifests exchanged
// with the decentralized node. Shapes follow the DIF Credential Manifest and
// Presentation Exchange specs; keep these minimal and versioned independently
// from any internal persistence models.

// ContractVersion identifies the contract schema version for compatibility checks.
// Bump on breaking changes to the shapes below; consumers can pin or roll forward.
const ContractVersion = "v0.1.0"

// Issuer identifies the party issuing credentials described by a manifest.
// The ID is rewritten to the local agent's DID before a manifest is published.
type Issuer struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// OutputDescriptor declares one credential a manifest can produce.
// Name doubles as the issued credential's type.
type OutputDescriptor struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Schema string `json:"schema,omitempty"`
}

// CredentialManifest is the declarative descriptor of one issuable credential
// type: who issues it, what a presentation must satisfy to be eligible, and
// what comes out. Supplied by configuration; immutable after construction
// except for the issuer.id patch applied at publish time.
type CredentialManifest struct {
	ID                     string                  `json:"id"`
	Name                   string                  `json:"name,omitempty"`
	SpecVersion            string                  `json:"spec_version,omitempty"`
	Issuer                 Issuer                  `json:"issuer"`
	OutputDescriptors      []OutputDescriptor      `json:"output_descriptors"`
	PresentationDefinition *PresentationDefinition `json:"presentation_definition,omitempty"`
}

// PresentationDefinition constrains which credential tokens in a presentation
// qualify against a manifest.
// https://identity.foundation/presentation-exchange/spec/v2.0.0/
type PresentationDefinition struct {
	ID               string            `json:"id"`
	InputDescriptors []InputDescriptor `json:"input_descriptors"`
}

// InputDescriptor describes one required input credential.
type InputDescriptor struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Purpose     string      `json:"purpose,omitempty"`
	Constraints Constraints `json:"constraints"`
}

// Constraints lists the field-level requirements of an input descriptor.
type Constraints struct {
	Fields []Field `json:"fields,omitempty"`
}

// Field is a JSON-path constraint over a credential's payload.
type Field struct {
	Path   []string `json:"path"`
	Filter *Filter  `json:"filter,omitempty"`
}

// Filter narrows acceptable values for a constrained field.
type Filter struct {
	Type    string `json:"type,omitempty"`
	Pattern string `json:"pattern,omitempty"`
	Const   string `json:"const,omitempty"`
}
