// Package metrics provides Prometheus metrics for the exchange core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all exchange metrics.
type Metrics struct {
	// Setup metrics
	SetupRunsTotal         *prometheus.CounterVec // Setup orchestrator runs by outcome (complete, failed)
	ManifestRecordsCreated prometheus.Counter     // Manifest records created by reconciliation

	// Pipeline metrics
	ApplicationsTotal    *prometheus.CounterVec   // Applications processed by outcome (issued, aborted)
	StageDurationSeconds *prometheus.HistogramVec // Pipeline stage latency by stage name

	// Provider metrics
	ProviderRequestSeconds *prometheus.HistogramVec // External provider request latency by provider ID
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates a Metrics instance registered on reg. Tests pass a fresh
// registry to avoid duplicate registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SetupRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dwn_gateway_setup_runs_total",
			Help: "Total number of setup orchestrator runs by outcome",
		}, []string{"outcome"}),

		ManifestRecordsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "dwn_gateway_manifest_records_created_total",
			Help: "Total number of manifest records created on the node",
		}),

		ApplicationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dwn_gateway_applications_total",
			Help: "Total number of application submissions processed by outcome",
		}, []string{"outcome"}),

		StageDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dwn_gateway_pipeline_stage_duration_seconds",
			Help:    "Duration of application pipeline stages",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"stage"}),

		ProviderRequestSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dwn_gateway_provider_request_duration_seconds",
			Help:    "Duration of external data provider requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
	}
}
