// Package credential is the gateway's credential library: JWT-encoded
// verifiable credentials signed with Ed25519, plus presentation-exchange
// evaluation. Reconcilers and the pipeline treat these functions as
// correctness-trusted primitives.
package credential

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"dwn-gateway/internal/agent"
)

// BaseContext is the W3C credentials context embedded in every issued credential.
const BaseContext = "https://www.w3.org/2018/credentials/v1"

// VCClaim is the "vc" claim of a JWT-encoded verifiable credential.
type VCClaim struct {
	Context           []string       `json:"@context"`
	Type              []string       `json:"type"`
	CredentialSubject map[string]any `json:"credentialSubject"`
}

// Claims is the full JWT claim set of a verifiable credential token.
type Claims struct {
	jwt.RegisteredClaims
	VC VCClaim `json:"vc"`
}

// Parsed is the decoded, not-yet-verified view of a credential token.
type Parsed struct {
	Subject string
	Issuer  string
	Claims  Claims
}

// Verified is a credential token that passed subject, issuer, and signature
// checks. Produced by the pipeline's verify stage, consumed by issuance.
type Verified struct {
	Token    string
	Subject  string
	Issuer   string
	Claims   map[string]any
	Verified bool
}

// KeyResolver resolves an issuer DID to its Ed25519 verification key.
type KeyResolver func(ctx context.Context, issuerDID string) (ed25519.PublicKey, error)

// Issue creates and signs a new credential of the given type for the subject,
// carrying data as the credential subject. Returns the compact JWT.
func Issue(session *agent.Session, subjectDID, credentialType string, data map[string]any) (string, error) {
	if credentialType == "" {
		return "", fmt.Errorf("credential type is required")
	}

	subject := map[string]any{"id": subjectDID}
	for k, v := range data {
		subject[k] = v
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    session.DID(),
			Subject:   subjectDID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
		VC: VCClaim{
			Context:           []string{BaseContext},
			Type:              []string{"VerifiableCredential", credentialType},
			CredentialSubject: subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	token.Header["kid"] = session.KeyID()

	signed, err := token.SignedString(session.PrivateKey())
	if err != nil {
		return "", fmt.Errorf("signing credential: %w", err)
	}
	return signed, nil
}

// Parse decodes a credential token without verifying its signature. Used to
// read subject and issuer claims before the trust checks run.
func Parse(token string) (*Parsed, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("parsing credential token: %w", err)
	}
	return &Parsed{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
		Claims:  claims,
	}, nil
}

// Verify checks a credential token's signature against the issuer's key and
// returns the verified view. A bad signature or unresolvable issuer key is an
// error; callers decide whether that drops the token or aborts the request.
func Verify(ctx context.Context, token string, resolve KeyResolver) (*Verified, error) {
	parsed, err := Parse(token)
	if err != nil {
		return nil, err
	}

	key, err := resolve(ctx, parsed.Issuer)
	if err != nil {
		return nil, fmt.Errorf("resolving issuer key for %s: %w", parsed.Issuer, err)
	}

	var claims Claims
	if _, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return key, nil
	}); err != nil {
		return nil, fmt.Errorf("verifying credential signature: %w", err)
	}

	return &Verified{
		Token:    token,
		Subject:  claims.Subject,
		Issuer:   claims.Issuer,
		Claims:   claims.VC.CredentialSubject,
		Verified: true,
	}, nil
}
