package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_messages_fetched_total",
			Help: "Messages processed by the fetch aggregator",
		},
		[]string{"outcome"}, // ok, skipped
	)

	CategorizationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_categorization_runs_total",
			Help: "Categorization engine runs",
		},
		[]string{"outcome"}, // ok, empty, failed
	)

	OrdinalsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_ordinals_dropped_total",
			Help: "Model reply entries that did not resolve to a record",
		},
		[]string{"reason"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triage_llm_request_duration_seconds",
			Help:    "Language model request latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~50s
		},
		[]string{"status"},
	)

	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_pipeline_runs_total",
			Help: "Full fetch and categorize runs",
		},
		[]string{"status"}, // success, failed
	)
)

// RecordMessageFetched counts one message outcome
func RecordMessageFetched(outcome string) {
	MessagesFetched.WithLabelValues(outcome).Inc()
}

// RecordCategorization counts one categorization run
func RecordCategorization(outcome string) {
	CategorizationRuns.WithLabelValues(outcome).Inc()
}

// RecordOrdinalDropped counts one unresolved reply entry
func RecordOrdinalDropped(reason string) {
	OrdinalsDropped.WithLabelValues(reason).Inc()
}

// RecordLLMRequest observes the latency of one model call
func RecordLLMRequest(status string, duration time.Duration) {
	LLMRequestDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordPipelineRun counts one pipeline run
func RecordPipelineRun(status string) {
	PipelineRuns.WithLabelValues(status).Inc()
}
