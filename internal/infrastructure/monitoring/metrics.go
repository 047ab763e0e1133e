package monitoring

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	// Connector metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SessionRotated  prometheus.Counter
	BreakerState    *prometheus.GaugeVec

	// Workflow metrics
	WorkflowsTotal *prometheus.CounterVec
	AutoSyncTotal  *prometheus.CounterVec

	// Binding metrics
	BuffersUnbound prometheus.Counter
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modxel_connector_requests_total",
				Help: "Total number of connector requests",
			},
			[]string{"action", "outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modxel_connector_request_duration_seconds",
				Help:    "Connector request duration in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"action"},
		),
		SessionRotated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "modxel_session_cookie_rotations_total",
				Help: "Total number of session cookies taken from responses",
			},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "modxel_circuit_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"breaker"},
		),

		WorkflowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modxel_workflows_total",
				Help: "Total number of command workflows by outcome",
			},
			[]string{"workflow", "outcome"},
		),
		AutoSyncTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modxel_autosync_total",
				Help: "Pre-save events by result",
			},
			[]string{"result"},
		),

		BuffersUnbound: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "modxel_buffers_unbound_total",
				Help: "Total number of buffers unbound after remote removal",
			},
		),
	}
}

// Registry exposes the underlying registry as a gatherer
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest records a connector request
func (m *Metrics) RecordRequest(action, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(action, outcome).Inc()
	m.RequestDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// IncSessionRotated counts a session cookie rotation
func (m *Metrics) IncSessionRotated() {
	if m == nil {
		return
	}
	m.SessionRotated.Inc()
}

// SetBreakerState records a circuit breaker transition
func (m *Metrics) SetBreakerState(breaker string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(breaker).Set(float64(state))
}

// RecordWorkflow records a finished workflow
func (m *Metrics) RecordWorkflow(workflow, outcome string) {
	if m == nil {
		return
	}
	m.WorkflowsTotal.WithLabelValues(workflow, outcome).Inc()
}

// RecordAutoSync records a pre-save event result
func (m *Metrics) RecordAutoSync(result string) {
	if m == nil {
		return
	}
	m.AutoSyncTotal.WithLabelValues(result).Inc()
}

// AddBuffersUnbound counts buffers unbound after a removal
func (m *Metrics) AddBuffersUnbound(count int) {
	if m == nil {
		return
	}
	m.BuffersUnbound.Add(float64(count))
}

// WriteTextfile writes all metrics in the node-exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
