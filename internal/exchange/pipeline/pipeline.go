// Package pipeline processes inbound application submissions: select eligible
// credentials, verify them, enrich via an external provider, issue the new
// credential, and publish the response record. Stages run strictly in order;
// any stage error aborts that submission only, leaving its record
// unacknowledged on the node for a later pass.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"dwn-gateway/contracts/application"
	"dwn-gateway/contracts/manifest"
	"dwn-gateway/internal/agent"
	"dwn-gateway/internal/credential"
	"dwn-gateway/internal/exchange/metrics"
	"dwn-gateway/internal/exchange/protocol"
	"dwn-gateway/internal/exchange/providers"
	"dwn-gateway/internal/exchange/tracer"
	"dwn-gateway/internal/node"
)

// JWTPath is the JSON path token a fulfillment entry uses to reference the
// issued credential inside a response payload.
const JWTPath = "$.verifiableCredential[0]"

// CredentialFormat tags the encoding of issued credentials.
const CredentialFormat = "jwt_vc"

// Config carries the pipeline's trust and routing policy.
type Config struct {
	// AllowedIssuers are the deployment-configured issuers accepted during
	// verification, in addition to the statically trusted set (the session
	// identity itself).
	AllowedIssuers []string

	// ProviderID names the external data provider used for enrichment when a
	// manifest does not name its own.
	ProviderID string
}

// Pipeline drives one application submission through the five stages.
// Handlers are resolved once at construction; the session and trust table are
// read-only afterwards, so one pipeline serves concurrent submissions.
type Pipeline struct {
	node      node.Client
	session   *agent.Session
	registry  *providers.Registry
	invoker   *providers.Invoker
	resolver  credential.KeyResolver
	manifests map[string]manifest.CredentialManifest
	trusted   map[string]struct{}
	cfg       Config
	handlers  handlers
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
	logger    *slog.Logger
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithLogger configures a logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMetrics configures pipeline metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithTracer configures a tracer for pipeline spans.
func WithTracer(t tracer.Tracer) Option {
	return func(p *Pipeline) {
		p.tracer = t
	}
}

// WithOverrides replaces individual stage implementations.
func WithOverrides(o Overrides) Option {
	return func(p *Pipeline) {
		p.handlers = p.resolve(o)
	}
}

// New creates a pipeline over the given node, session, manifest set, and
// provider registry. The resolver verifies credential signatures by issuer.
func New(
	client node.Client,
	session *agent.Session,
	configured []manifest.CredentialManifest,
	registry *providers.Registry,
	invoker *providers.Invoker,
	resolver credential.KeyResolver,
	cfg Config,
	opts ...Option,
) *Pipeline {
	manifests := make(map[string]manifest.CredentialManifest, len(configured))
	for _, m := range configured {
		manifests[m.ID] = m
	}

	// The local identity is always trusted; deployment config widens the set.
	trusted := make(map[string]struct{}, len(cfg.AllowedIssuers)+1)
	trusted[session.DID()] = struct{}{}
	for _, iss := range cfg.AllowedIssuers {
		trusted[iss] = struct{}{}
	}

	p := &Pipeline{
		node:      client,
		session:   session,
		registry:  registry,
		invoker:   invoker,
		resolver:  resolver,
		manifests: manifests,
		trusted:   trusted,
		cfg:       cfg,
		tracer:    tracer.NewNoop(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	p.handlers = p.resolve(Overrides{})
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessRecord reads an application record's payload from the node, routes
// it to its target manifest, and processes it.
func (p *Pipeline) ProcessRecord(ctx context.Context, submission node.Record) error {
	raw, err := p.node.ReadRecord(ctx, submission.ID)
	if err != nil {
		return fmt.Errorf("reading application record %s: %w", submission.ID, err)
	}
	var presentation application.Presentation
	if err := json.Unmarshal(raw, &presentation); err != nil {
		return fmt.Errorf("parsing application record %s: %w", submission.ID, err)
	}
	return p.Process(ctx, submission, presentation)
}

// Process drives one submission through select, verify, request, issue, and
// respond, strictly in order. The submission author is the credential subject
// throughout.
func (p *Pipeline) Process(ctx context.Context, submission node.Record, presentation application.Presentation) (err error) {
	ctx, span := p.tracer.Start(ctx, tracer.SpanPipeline,
		tracer.String(tracer.AttrRecordID, submission.ID),
		tracer.String(tracer.AttrManifestID, presentation.ManifestID),
	)
	defer func() {
		span.End(err)
		if p.metrics != nil {
			outcome := "issued"
			if err != nil {
				outcome = "aborted"
			}
			p.metrics.ApplicationsTotal.WithLabelValues(outcome).Inc()
		}
	}()

	m, ok := p.manifests[presentation.ManifestID]
	if !ok {
		return fmt.Errorf("application %s targets unknown manifest %q", submission.ID, presentation.ManifestID)
	}
	if submission.Author == "" {
		return fmt.Errorf("application %s has no author", submission.ID)
	}

	tokens, err := p.runSelect(ctx, presentation.VerifiableCredential, &m)
	if err != nil {
		return err
	}

	verified, err := p.runVerify(ctx, tokens, &m, submission.Author)
	if err != nil {
		return err
	}

	data, err := p.runRequest(ctx, verified, p.cfg.ProviderID)
	if err != nil {
		return err
	}

	result, err := p.runIssue(ctx, data, submission.Author, &m)
	if err != nil {
		return err
	}

	if _, err = p.runRespond(ctx, result, submission); err != nil {
		return err
	}

	p.logger.Info("application processed",
		"record_id", submission.ID,
		"manifest_id", m.ID,
		"author", submission.Author,
	)
	return nil
}

// Stage runners wrap the resolved handlers with metrics.

func (p *Pipeline) runSelect(ctx context.Context, tokens []string, m *manifest.CredentialManifest) ([]string, error) {
	defer p.observe(OpSelect, time.Now())
	return p.handlers.selectStage(ctx, tokens, m)
}

func (p *Pipeline) runVerify(ctx context.Context, tokens []string, m *manifest.CredentialManifest, subjectDID string) ([]credential.Verified, error) {
	defer p.observe(OpVerify, time.Now())
	return p.handlers.verifyStage(ctx, tokens, m, subjectDID)
}

func (p *Pipeline) runRequest(ctx context.Context, verified []credential.Verified, providerID string) (map[string]any, error) {
	defer p.observe(OpRequest, time.Now())
	return p.handlers.requestStage(ctx, verified, providerID)
}

func (p *Pipeline) runIssue(ctx context.Context, data map[string]any, subjectDID string, m *manifest.CredentialManifest) (*IssueResult, error) {
	defer p.observe(OpIssue, time.Now())
	return p.handlers.issueStage(ctx, data, subjectDID, m)
}

func (p *Pipeline) runRespond(ctx context.Context, result *IssueResult, submission node.Record) (*node.Record, error) {
	defer p.observe(OpRespond, time.Now())
	return p.handlers.respondStage(ctx, result, submission)
}

func (p *Pipeline) observe(op Operation, start time.Time) {
	if p.metrics != nil {
		p.metrics.StageDurationSeconds.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
	}
}

// defaultSelect delegates to the credential library's presentation-definition
// selection. Pure function of its inputs.
func (p *Pipeline) defaultSelect(_ context.Context, tokens []string, m *manifest.CredentialManifest) ([]string, error) {
	return credential.SelectCredentials(tokens, m.PresentationDefinition), nil
}

// defaultVerify first checks global presentation-definition satisfaction
// (failure aborts the submission) and then filters tokens per policy: wrong
// subject, untrusted issuer, and failed signature checks drop the token
// silently. Output order matches input order minus drops.
func (p *Pipeline) defaultVerify(ctx context.Context, tokens []string, m *manifest.CredentialManifest, subjectDID string) ([]credential.Verified, error) {
	if err := credential.SatisfiesDefinition(tokens, m.PresentationDefinition); err != nil {
		return nil, fmt.Errorf("verifying application against manifest %s: %w", m.ID, err)
	}

	var verified []credential.Verified
	for _, token := range tokens {
		parsed, err := credential.Parse(token)
		if err != nil {
			p.logger.Debug("dropping unparseable credential", "error", err)
			continue
		}
		if parsed.Subject != subjectDID {
			p.logger.Debug("dropping credential with foreign subject",
				"subject", parsed.Subject, "author", subjectDID)
			continue
		}
		if _, ok := p.trusted[parsed.Issuer]; !ok {
			p.logger.Debug("dropping credential from untrusted issuer", "issuer", parsed.Issuer)
			continue
		}
		v, err := credential.Verify(ctx, token, p.resolver)
		if err != nil || v == nil {
			p.logger.Debug("dropping credential failing signature verification", "issuer", parsed.Issuer)
			continue
		}
		verified = append(verified, *v)
	}
	return verified, nil
}

// defaultRequest looks up the provider by id and forwards the verified
// credentials. An omitted id selects the first configured provider; an
// unmatched id is an error, never a fallback.
func (p *Pipeline) defaultRequest(ctx context.Context, verified []credential.Verified, providerID string) (map[string]any, error) {
	var provider providers.Provider
	var err error
	if providerID == "" {
		provider, err = p.registry.Default()
	} else {
		provider, err = p.registry.Get(providerID)
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()
	body := map[string]any{"verifiedCredentials": verified}
	data, err := p.invoker.Invoke(ctx, provider, body)
	if p.metrics != nil {
		p.metrics.ProviderRequestSeconds.WithLabelValues(provider.ID).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// defaultIssue signs a credential of the type named by the manifest's first
// output descriptor. Descriptor index 0 is the only one honored; manifests
// with more output descriptors are partially fulfilled.
func (p *Pipeline) defaultIssue(_ context.Context, data map[string]any, subjectDID string, m *manifest.CredentialManifest) (*IssueResult, error) {
	if len(m.OutputDescriptors) == 0 {
		return nil, fmt.Errorf("manifest %s has no output descriptors", m.ID)
	}
	descriptor := m.OutputDescriptors[0]

	signed, err := credential.Issue(p.session, subjectDID, descriptor.Name, data)
	if err != nil {
		return nil, fmt.Errorf("issuing credential for manifest %s: %w", m.ID, err)
	}

	return &IssueResult{
		ManifestID: m.ID,
		Credential: signed,
		Fulfillment: application.Fulfillment{
			DescriptorMap: []application.DescriptorMapEntry{{
				ID:     descriptor.ID,
				Format: CredentialFormat,
				Path:   JWTPath,
			}},
		},
	}, nil
}

// defaultRespond publishes the issuance result as a response record and sends
// it to the submission author's replica.
func (p *Pipeline) defaultRespond(ctx context.Context, result *IssueResult, submission node.Record) (*node.Record, error) {
	response := application.Response{
		ManifestID:           result.ManifestID,
		Fulfillment:          result.Fulfillment,
		VerifiableCredential: []string{result.Credential},
	}
	data, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("marshaling response for %s: %w", submission.ID, err)
	}

	reply, err := p.node.CreateRecord(ctx, node.CreateOptions{
		Schema:       protocol.ResponseSchema,
		Protocol:     protocol.URI,
		ProtocolPath: protocol.ResponsePath,
		Recipient:    submission.Author,
		ParentID:     submission.ID,
		Data:         data,
		Store:        true,
		Publish:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating response record for %s: %w", submission.ID, err)
	}
	if !reply.Status.OK() {
		return nil, &node.CreateError{Code: reply.Status.Code, Detail: reply.Status.Detail}
	}
	if reply.Record == nil {
		return nil, fmt.Errorf("response for %s: %w", submission.ID, node.ErrRecordMissing)
	}

	status, err := p.node.SendRecord(ctx, *reply.Record, submission.Author)
	if err != nil {
		return nil, fmt.Errorf("sending response record %s: %w", reply.Record.ID, err)
	}
	if !status.OK() {
		return nil, &node.SendError{Code: status.Code, Detail: status.Detail}
	}
	return reply.Record, nil
}
