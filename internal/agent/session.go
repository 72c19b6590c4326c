// Package agent holds the local identity used to author records and sign
// credentials. A Session is constructed once at startup and passed explicitly
// into every reconciler and pipeline stage; nothing in this module reads
// identity from ambient state.
package agent

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Session is the local agent identity: a DID, its Ed25519 signing key, and
// the key identifier embedded in signed credential headers. Read-only after
// construction and safe for concurrent use.
type Session struct {
	did        string
	keyID      string
	privateKey ed25519.PrivateKey
}

// NewSession derives a session from a hex-encoded Ed25519 seed. An empty seed
// generates an ephemeral key, which is only suitable for development: records
// published under it cannot be re-signed after a restart.
func NewSession(did, seedHex string) (*Session, error) {
	if did == "" {
		return nil, fmt.Errorf("agent DID is required")
	}

	var priv ed25519.PrivateKey
	if seedHex == "" {
		_, generated, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generating ephemeral key: %w", err)
		}
		priv = generated
	} else {
		seed, err := hex.DecodeString(seedHex)
		if err != nil {
			return nil, fmt.Errorf("decoding agent seed: %w", err)
		}
		if len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("agent seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
		}
		priv = ed25519.NewKeyFromSeed(seed)
	}

	return &Session{
		did:        did,
		keyID:      did + "#key-1",
		privateKey: priv,
	}, nil
}

// DID returns the agent's decentralized identifier.
func (s *Session) DID() string { return s.did }

// KeyID returns the verification method identifier for the signing key.
func (s *Session) KeyID() string { return s.keyID }

// PrivateKey exposes the signing key for the credential library.
func (s *Session) PrivateKey() ed25519.PrivateKey { return s.privateKey }

// PublicKey returns the verification half of the signing key.
func (s *Session) PublicKey() ed25519.PublicKey {
	return s.privateKey.Public().(ed25519.PublicKey)
}
