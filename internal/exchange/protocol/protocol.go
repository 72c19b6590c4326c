// Package protocol owns the canonical credential-issuance protocol definition
// and its reconciliation against the remote node.
package protocol

import (
	"encoding/json"

	"dwn-gateway/internal/node"
)

// Identifiers of the credential-issuance protocol and its record types.
const (
	URI = "https://dwn-gateway.dev/protocols/credential-issuance"

	ManifestSchema    = "https://identity.foundation/credential-manifest/schemas/credential-manifest"
	ApplicationSchema = "https://identity.foundation/credential-manifest/schemas/credential-application"
	ResponseSchema    = "https://identity.foundation/credential-manifest/schemas/credential-response"

	ManifestPath    = "manifest"
	ApplicationPath = "application"
	ResponsePath    = "application/response"
)

// structure declares who may write which record type: anyone may apply,
// only the protocol owner publishes manifests and responses.
var structure = json.RawMessage(`{
	"manifest": {},
	"application": {
		"$actions": [{"who": "anyone", "can": "write"}],
		"response": {
			"$actions": [{"who": "author", "of": "application", "can": "read"}]
		}
	}
}`)

// Definition returns the canonical protocol definition. Exactly one such
// definition exists per deployment; reconciliation guarantees at most one
// published copy on a given node.
func Definition() node.ProtocolDefinition {
	return node.ProtocolDefinition{
		Protocol:  URI,
		Published: true,
		Types: map[string]node.TypeDefinition{
			"manifest":    {Schema: ManifestSchema, DataFormats: []string{"application/json"}},
			"application": {Schema: ApplicationSchema, DataFormats: []string{"application/json"}},
			"response":    {Schema: ResponseSchema, DataFormats: []string{"application/json"}},
		},
		Structure: structure,
	}
}
