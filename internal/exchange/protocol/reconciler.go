package protocol

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"dwn-gateway/internal/agent"
	"dwn-gateway/internal/node"
)

// Reconciler ensures the remote node advertises the canonical protocol
// definition. Reconciliation is query-then-configure: an existing definition,
// however different from the canonical one, counts as already satisfied.
type Reconciler struct {
	node    node.Client
	session *agent.Session
	logger  *slog.Logger
}

// Option configures the reconciler.
type Option func(*Reconciler)

// WithLogger configures a logger for the reconciler.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// NewReconciler creates a protocol reconciler bound to one node and session.
func NewReconciler(client node.Client, session *agent.Session, opts ...Option) *Reconciler {
	r := &Reconciler{
		node:    client,
		session: session,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Query returns the protocol definitions the node holds for the canonical
// protocol URI. A node failure status surfaces as a node.QueryError carrying
// the status code and detail verbatim.
func (r *Reconciler) Query(ctx context.Context) ([]node.ProtocolDefinition, error) {
	reply, err := r.node.QueryProtocols(ctx, URI)
	if err != nil {
		return nil, fmt.Errorf("querying protocol %s: %w", URI, err)
	}
	if !reply.Status.OK() {
		return nil, &node.QueryError{Code: reply.Status.Code, Detail: reply.Status.Detail}
	}
	return reply.Protocols, nil
}

// Configure submits the canonical protocol definition to the node, then
// publishes the resulting handle to the session identity's remote replica.
func (r *Reconciler) Configure(ctx context.Context) (*node.ProtocolDefinition, error) {
	def := Definition()

	reply, err := r.node.ConfigureProtocol(ctx, def)
	if err != nil {
		return nil, fmt.Errorf("configuring protocol %s: %w", URI, err)
	}
	if !reply.Status.OK() {
		return nil, &node.ConfigureError{Code: reply.Status.Code, Detail: reply.Status.Detail}
	}
	if reply.Protocol == nil {
		return nil, fmt.Errorf("protocol %s: %w", URI, node.ErrProtocolMissing)
	}

	status, err := r.node.PublishProtocol(ctx, *reply.Protocol, r.session.DID())
	if err != nil {
		return nil, fmt.Errorf("publishing protocol %s: %w", URI, err)
	}
	if !status.OK() {
		return nil, &node.ConfigureError{Code: status.Code, Detail: status.Detail}
	}

	r.logger.Info("configured credential-issuance protocol", "protocol", URI)
	return &def, nil
}

// Reconcile queries the node and configures the protocol iff no definition
// exists. Returns true when a configure was performed. Idempotent.
func (r *Reconciler) Reconcile(ctx context.Context) (bool, error) {
	existing, err := r.Query(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	if _, err := r.Configure(ctx); err != nil {
		return false, err
	}
	return true, nil
}
