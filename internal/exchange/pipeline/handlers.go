package pipeline

import (
	"context"

	"dwn-gateway/contracts/application"
	"dwn-gateway/contracts/manifest"
	"dwn-gateway/internal/credential"
	"dwn-gateway/internal/node"
)

// Operation identifies one pipeline stage. Used for metrics and span labels.
type Operation string

const (
	OpSelect  Operation = "select"
	OpVerify  Operation = "verify"
	OpRequest Operation = "request"
	OpIssue   Operation = "issue"
	OpRespond Operation = "respond"
)

// Stage function signatures. The stage sequence and these data contracts are
// fixed: an override replaces the default implementation of a stage, never
// its position or shape.
type (
	// SelectFunc returns the subset of presentation tokens eligible against
	// the manifest's presentation definition. Pure; no I/O.
	SelectFunc func(ctx context.Context, tokens []string, m *manifest.CredentialManifest) ([]string, error)

	// VerifyFunc validates tokens against the submission author and issuer
	// trust policy. An error aborts the submission; policy-filtered tokens
	// are dropped from the result, order preserved.
	VerifyFunc func(ctx context.Context, tokens []string, m *manifest.CredentialManifest, subjectDID string) ([]credential.Verified, error)

	// RequestFunc calls the external data provider identified by providerID
	// with the verified credentials and returns its JSON response verbatim.
	RequestFunc func(ctx context.Context, verified []credential.Verified, providerID string) (map[string]any, error)

	// IssueFunc builds and signs the credential for the manifest's first
	// output descriptor.
	IssueFunc func(ctx context.Context, data map[string]any, subjectDID string, m *manifest.CredentialManifest) (*IssueResult, error)

	// RespondFunc publishes the issuance result as a response record and
	// sends it to the submission author's replica.
	RespondFunc func(ctx context.Context, result *IssueResult, submission node.Record) (*node.Record, error)
)

// IssueResult is the output of the issue stage: a signed credential plus the
// fulfillment mapping it back to the originating output descriptor.
type IssueResult struct {
	ManifestID  string
	Credential  string
	Fulfillment application.Fulfillment
}

// Overrides lets a caller replace individual stage implementations. A nil
// field keeps the built-in default. Resolution happens once at construction;
// the resolved set is bound for the pipeline's lifetime.
type Overrides struct {
	Select  SelectFunc
	Verify  VerifyFunc
	Request RequestFunc
	Issue   IssueFunc
	Respond RespondFunc
}

// handlers is the resolved stage set a pipeline executes.
type handlers struct {
	selectStage  SelectFunc
	verifyStage  VerifyFunc
	requestStage RequestFunc
	issueStage   IssueFunc
	respondStage RespondFunc
}

// resolve binds each stage to its override or built-in default.
func (p *Pipeline) resolve(o Overrides) handlers {
	h := handlers{
		selectStage:  p.defaultSelect,
		verifyStage:  p.defaultVerify,
		requestStage: p.defaultRequest,
		issueStage:   p.defaultIssue,
		respondStage: p.defaultRespond,
	}
	if o.Select != nil {
		h.selectStage = o.Select
	}
	if o.Verify != nil {
		h.verifyStage = o.Verify
	}
	if o.Request != nil {
		h.requestStage = o.Request
	}
	if o.Issue != nil {
		h.issueStage = o.Issue
	}
	if o.Respond != nil {
		h.respondStage = o.Respond
	}
	return h
}
