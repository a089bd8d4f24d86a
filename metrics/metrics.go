// Package metrics holds the prometheus collectors for analysis runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes.
const (
	OutcomeRendered = "rendered"
	OutcomeNoInput  = "no_input"
	OutcomeNoData   = "no_data"
	OutcomeFailed   = "failed"
	OutcomeBusy     = "busy"
)

// Metrics is a self-contained registry. All methods are safe on a nil receiver.
type Metrics struct {
	registry      *prometheus.Registry
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	workflowCalls *prometheus.CounterVec
	streamEvents  *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "engagement",
			Name:      "runs_total",
			Help:      "Analysis runs by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "engagement",
			Name:      "run_duration_seconds",
			Help:      "Wall time of admitted analysis runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		workflowCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "engagement",
			Name:      "workflow_calls_total",
			Help:      "Remote workflow runs by result.",
		}, []string{"result"}),
		streamEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "engagement",
			Name:      "stream_events_total",
			Help:      "Workflow stream events by kind.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(
		m.runs, m.runDuration, m.workflowCalls, m.streamEvents,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveRun counts one click by outcome. Busy clicks carry no duration.
func (m *Metrics) ObserveRun(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	if outcome != OutcomeBusy {
		m.runDuration.Observe(elapsed.Seconds())
	}
}

// WorkflowCall counts one remote run.
func (m *Metrics) WorkflowCall(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.workflowCalls.WithLabelValues(result).Inc()
}

// StreamEvent counts one stream event: "update", "closed" or "failed".
func (m *Metrics) StreamEvent(kind string) {
	if m == nil {
		return
	}
	m.streamEvents.WithLabelValues(kind).Inc()
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
