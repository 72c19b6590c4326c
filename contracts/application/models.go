package application

// Package application hosts the wire DTOs for credential applications and the
// responses issued against them. An application record's payload is a
// presentation bundle; a response record's payload carries the fulfillment
// mapping issued credentials back to manifest output descriptors.

// ContractVersion identifies the contract schema version for compatibility checks.
const ContractVersion = "v0.1.0"

// Presentation is the bundle an applicant submits: the credential tokens
// claimed to satisfy a manifest's presentation definition, plus routing
// metadata.
type Presentation struct {
	ManifestID           string   `json:"credential_manifest_id"`
	Context              []string `json:"@context,omitempty"`
	Type                 []string `json:"type,omitempty"`
	VerifiableCredential []string `json:"verifiableCredential"`
}

// DescriptorMapEntry maps one issued credential back to the output descriptor
// it fulfills. Path is a JSON path token into the response payload.
type DescriptorMapEntry struct {
	ID     string `json:"id"`
	Format string `json:"format"`
	Path   string `json:"path"`
}

// Fulfillment describes which output descriptors a response satisfies.
type Fulfillment struct {
	DescriptorMap []DescriptorMapEntry `json:"descriptor_map"`
}

// Response is the payload of a response record: the signed credential plus
// its fulfillment descriptor. Written once by the issuer, never read back.
type Response struct {
	ManifestID           string      `json:"credential_manifest_id"`
	Fulfillment          Fulfillment `json:"fulfillment"`
	VerifiableCredential []string    `json:"verifiableCredential"`
}
