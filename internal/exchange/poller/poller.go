// Package poller periodically queries the node for application records and
// feeds them through the pipeline. A record that fails processing stays
// unacknowledged and is picked up again on a later pass; only successfully
// answered records are remembered for the life of the process.
package poller

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"dwn-gateway/internal/exchange/pipeline"
	"dwn-gateway/internal/exchange/protocol"
	"dwn-gateway/internal/node"
)

// Poller schedules recurring application sweeps.
type Poller struct {
	node      node.Client
	pipe      *pipeline.Pipeline
	scheduler *gocron.Scheduler
	interval  time.Duration
	logger    *slog.Logger

	mu        sync.Mutex
	processed map[string]struct{}
}

// Option configures the poller.
type Option func(*Poller)

// WithLogger configures a logger for the poller.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) {
		p.logger = logger
	}
}

// New creates a poller sweeping the node every interval.
func New(client node.Client, pipe *pipeline.Pipeline, interval time.Duration, opts ...Option) *Poller {
	p := &Poller{
		node:      client,
		pipe:      pipe,
		scheduler: gocron.NewScheduler(time.UTC),
		interval:  interval,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		processed: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins sweeping in the background until Stop is called.
func (p *Poller) Start(ctx context.Context) error {
	_, err := p.scheduler.Every(p.interval).Do(func() {
		p.Sweep(ctx)
	})
	if err != nil {
		return err
	}
	p.scheduler.StartAsync()
	return nil
}

// Stop halts the scheduler. In-flight sweeps finish.
func (p *Poller) Stop() {
	p.scheduler.Stop()
}

// Sweep runs one pass: query application records, process the ones not yet
// answered. Per-record failures are logged and never abort the sweep.
func (p *Poller) Sweep(ctx context.Context) {
	reply, err := p.node.QueryRecords(ctx, node.RecordFilter{
		Protocol:     protocol.URI,
		ProtocolPath: protocol.ApplicationPath,
		Schema:       protocol.ApplicationSchema,
	})
	if err != nil {
		p.logger.Error("application sweep query failed", "error", err)
		return
	}
	if !reply.Status.OK() {
		p.logger.Error("application sweep rejected by node",
			"status", reply.Status.Code, "detail", reply.Status.Detail)
		return
	}

	for _, record := range reply.Records {
		if p.alreadyProcessed(record.ID) {
			continue
		}
		if err := p.pipe.ProcessRecord(ctx, record); err != nil {
			p.logger.Warn("application processing failed",
				"record_id", record.ID, "error", err)
			continue
		}
		p.markProcessed(record.ID)
	}
}

func (p *Poller) alreadyProcessed(recordID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.processed[recordID]
	return ok
}

func (p *Poller) markProcessed(recordID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed[recordID] = struct{}{}
}
