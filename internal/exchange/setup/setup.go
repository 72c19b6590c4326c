// Package setup sequences the protocol and manifest reconcilers at startup.
// A run either completes or fails as a whole; records created before a
// failure remain on the node, and re-running converges because manifest
// creation is keyed by id equality.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"dwn-gateway/internal/exchange/manifest"
	"dwn-gateway/internal/exchange/metrics"
	"dwn-gateway/internal/exchange/protocol"
	"dwn-gateway/internal/exchange/tracer"
)

// Outcome labels a finished setup run.
type Outcome string

const (
	OutcomeComplete Outcome = "complete"
	OutcomeFailed   Outcome = "failed"
)

// Orchestrator drives one idempotent setup pass: protocol reconciliation
// followed by manifest reconciliation. Safe to re-run at any time.
type Orchestrator struct {
	protocols *protocol.Reconciler
	manifests *manifest.Reconciler
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
	logger    *slog.Logger
	ready     atomic.Bool
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithLogger configures a logger for the orchestrator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithMetrics configures setup metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithTracer configures a tracer for setup spans.
func WithTracer(t tracer.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = t
	}
}

// New creates a setup orchestrator over the two reconcilers.
func New(protocols *protocol.Reconciler, manifests *manifest.Reconciler, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		protocols: protocols,
		manifests: manifests,
		tracer:    tracer.NewNoop(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Ready reports whether a setup run has completed since process start.
// The readiness endpoint gates on this.
func (o *Orchestrator) Ready() bool {
	return o.ready.Load()
}

// Run executes one setup pass. Any stage error aborts the sequence and
// surfaces unmodified; there is no partial rollback.
func (o *Orchestrator) Run(ctx context.Context) error {
	ctx, span := o.tracer.Start(ctx, tracer.SpanSetup)
	err := o.run(ctx)
	span.End(err)

	outcome := OutcomeComplete
	if err != nil {
		outcome = OutcomeFailed
	}
	if o.metrics != nil {
		o.metrics.SetupRunsTotal.WithLabelValues(string(outcome)).Inc()
	}
	if err != nil {
		o.logger.Error("setup failed", "error", err)
		return err
	}

	o.ready.Store(true)
	o.logger.Info("setup complete")
	return nil
}

func (o *Orchestrator) run(ctx context.Context) error {
	configured, err := o.protocols.Reconcile(ctx)
	if err != nil {
		return err
	}
	if configured {
		o.logger.Info("protocol configured", "protocol", protocol.URI)
	}

	records, _, err := o.manifests.QueryRecords(ctx)
	if err != nil {
		return err
	}

	existing, err := o.manifests.ReadRecords(ctx, records)
	if err != nil {
		return err
	}

	// With no records on the node every configured manifest is missing;
	// otherwise only the set difference is created.
	missing := o.manifests.Configured()
	if len(existing) > 0 {
		missing = manifest.ComputeMissing(missing, existing)
	}
	if len(missing) == 0 {
		return nil
	}

	created, failures := o.manifests.CreateMissing(ctx, missing)
	if o.metrics != nil {
		o.metrics.ManifestRecordsCreated.Add(float64(len(created)))
	}
	o.logger.Info("manifest reconciliation finished",
		"missing", len(missing),
		"created", len(created),
		"failed", len(failures),
	)

	if len(failures) > 0 {
		errs := make([]error, 0, len(failures))
		for _, f := range failures {
			errs = append(errs, fmt.Errorf("manifest %s: %w", f.Manifest.ID, f.Err))
		}
		return fmt.Errorf("creating manifest records: %w", errors.Join(errs...))
	}
	return nil
}
