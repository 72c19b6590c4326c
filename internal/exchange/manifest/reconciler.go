// Package manifest reconciles the configured credential manifests against the
// manifest records a node holds: the missing set is computed by id equality
// and created, never updated in place. Re-running after a partial failure is
// safe because creation is keyed by manifest id, not by a run id.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"dwn-gateway/contracts/manifest"
	"dwn-gateway/internal/agent"
	"dwn-gateway/internal/exchange/protocol"
	"dwn-gateway/internal/node"
)

// Reconciler ensures one manifest record exists on the node for every
// configured manifest.
type Reconciler struct {
	node       node.Client
	session    *agent.Session
	configured []manifest.CredentialManifest
	logger     *slog.Logger
}

// Option configures the reconciler.
type Option func(*Reconciler)

// WithLogger configures a logger for the reconciler.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// NewReconciler creates a manifest reconciler for the configured manifest set.
func NewReconciler(client node.Client, session *agent.Session, configured []manifest.CredentialManifest, opts ...Option) *Reconciler {
	r := &Reconciler{
		node:       client,
		session:    session,
		configured: configured,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Configured returns the manifest set this reconciler maintains.
func (r *Reconciler) Configured() []manifest.CredentialManifest {
	return r.configured
}

// QueryRecords returns the node's manifest records plus the paging cursor.
// A node failure status surfaces as a node.QueryError.
func (r *Reconciler) QueryRecords(ctx context.Context) ([]node.Record, string, error) {
	reply, err := r.node.QueryRecords(ctx, node.RecordFilter{
		Protocol:     protocol.URI,
		ProtocolPath: protocol.ManifestPath,
		Schema:       protocol.ManifestSchema,
	})
	if err != nil {
		return nil, "", fmt.Errorf("querying manifest records: %w", err)
	}
	if !reply.Status.OK() {
		return nil, "", &node.QueryError{Code: reply.Status.Code, Detail: reply.Status.Detail}
	}
	return reply.Records, reply.Cursor, nil
}

// ReadRecords reads and parses every record's JSON payload. Reads fan out
// concurrently but the result ordering matches the input ordering. A single
// unreadable record aborts the whole pass; there is no partial result.
func (r *Reconciler) ReadRecords(ctx context.Context, records []node.Record) ([]manifest.CredentialManifest, error) {
	manifests := make([]manifest.CredentialManifest, len(records))

	g, ctx := errgroup.WithContext(ctx)
	for i, rec := range records {
		g.Go(func() error {
			raw, err := r.node.ReadRecord(ctx, rec.ID)
			if err != nil {
				return fmt.Errorf("reading manifest record %s: %w", rec.ID, err)
			}
			if err := json.Unmarshal(raw, &manifests[i]); err != nil {
				return fmt.Errorf("parsing manifest record %s: %w", rec.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return manifests, nil
}

// ComputeMissing returns the configured manifests with no existing manifest
// sharing their id. Order of the configured set is preserved; duplicate ids
// in the configured set are evaluated independently, not deduplicated.
func ComputeMissing(configured, existing []manifest.CredentialManifest) []manifest.CredentialManifest {
	known := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		known[m.ID] = struct{}{}
	}

	var missing []manifest.CredentialManifest
	for _, m := range configured {
		if _, ok := known[m.ID]; !ok {
			missing = append(missing, m)
		}
	}
	return missing
}

// CreateRecord publishes one manifest: the issuer id is rewritten to the
// session DID, the record is created stored+published under the manifest
// schema/path, then sent to the session identity's own remote replica.
func (r *Reconciler) CreateRecord(ctx context.Context, m manifest.CredentialManifest) (*node.Record, error) {
	m.Issuer.ID = r.session.DID()

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest %s: %w", m.ID, err)
	}

	reply, err := r.node.CreateRecord(ctx, node.CreateOptions{
		Schema:       protocol.ManifestSchema,
		Protocol:     protocol.URI,
		ProtocolPath: protocol.ManifestPath,
		Data:         data,
		Store:        true,
		Publish:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating manifest record %s: %w", m.ID, err)
	}
	if !reply.Status.OK() {
		return nil, &node.CreateError{Code: reply.Status.Code, Detail: reply.Status.Detail}
	}
	if reply.Record == nil {
		return nil, fmt.Errorf("manifest %s: %w", m.ID, node.ErrRecordMissing)
	}

	status, err := r.node.SendRecord(ctx, *reply.Record, r.session.DID())
	if err != nil {
		return nil, fmt.Errorf("sending manifest record %s: %w", m.ID, err)
	}
	if !status.OK() {
		return nil, &node.SendError{Code: status.Code, Detail: status.Detail}
	}

	r.logger.Info("created manifest record", "manifest_id", m.ID, "record_id", reply.Record.ID)
	return reply.Record, nil
}

// CreateFailure pairs a manifest with the error that prevented its creation.
type CreateFailure struct {
	Manifest manifest.CredentialManifest
	Err      error
}

// CreateMissing creates a record for each manifest independently, fanning out
// concurrently. Successes keep the input order. Per-item failures are never
// silently dropped: every failed manifest comes back in the failure list
// paired with its error, and the caller decides whether that fails the pass.
func (r *Reconciler) CreateMissing(ctx context.Context, manifests []manifest.CredentialManifest) ([]node.Record, []CreateFailure) {
	type outcome struct {
		record *node.Record
		err    error
	}
	outcomes := make([]outcome, len(manifests))

	g, ctx := errgroup.WithContext(ctx)
	for i, m := range manifests {
		g.Go(func() error {
			rec, err := r.CreateRecord(ctx, m)
			outcomes[i] = outcome{record: rec, err: err}
			return nil
		})
	}
	// Goroutines never return errors; failures are collected per item.
	_ = g.Wait()

	var created []node.Record
	var failures []CreateFailure
	for i, o := range outcomes {
		if o.err != nil {
			failures = append(failures, CreateFailure{Manifest: manifests[i], Err: o.err})
			continue
		}
		created = append(created, *o.record)
	}
	return created, failures
}
