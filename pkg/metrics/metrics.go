package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weatherboard"

// Metrics holds the Prometheus collectors shared by the upstream pipelines.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec   // labels: dataset, outcome
	UpstreamDuration *prometheus.HistogramVec // labels: dataset
	RecordsSkipped   *prometheus.CounterVec   // labels: pipeline, reason
	RecordsEmitted   *prometheus.CounterVec   // labels: pipeline
	PipelineOutcomes *prometheus.CounterVec   // labels: pipeline, outcome
}

// NewMetrics creates and registers all collectors with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := build()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.RecordsSkipped,
		m.RecordsEmitted,
		m.PipelineOutcomes,
	)
	return m
}

// NewMetricsForTesting creates unregistered collectors so tests can build
// as many instances as they like.
func NewMetricsForTesting() *Metrics {
	return build()
}

func build() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "CWA open-data requests by dataset and outcome.",
		}, []string{"dataset", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "CWA open-data request latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"dataset"}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Upstream records dropped during normalization.",
		}, []string{"pipeline", "reason"}),
		RecordsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_emitted_total",
			Help:      "Normalized records returned to clients.",
		}, []string{"pipeline"}),
		PipelineOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_outcomes_total",
			Help:      "Pipeline invocations by final outcome.",
		}, []string{"pipeline", "outcome"}),
	}
}

// ObserveUpstream records a finished upstream call.
func (m *Metrics) ObserveUpstream(dataset, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(dataset, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(dataset).Observe(elapsed.Seconds())
}

// Skipped adds n dropped records for pipeline and reason.
func (m *Metrics) Skipped(pipeline, reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecordsSkipped.WithLabelValues(pipeline, reason).Add(float64(n))
}

// Emitted adds n returned records for pipeline.
func (m *Metrics) Emitted(pipeline string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecordsEmitted.WithLabelValues(pipeline).Add(float64(n))
}

// Outcome counts one pipeline run ending in outcome.
func (m *Metrics) Outcome(pipeline, outcome string) {
	if m == nil {
		return
	}
	m.PipelineOutcomes.WithLabelValues(pipeline, outcome).Inc()
}
