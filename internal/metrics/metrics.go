package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	pipelineDurationBucketStart  = 0.25
	pipelineDurationBucketFactor = 2.0
	pipelineDurationBucketCount  = 10
)

const (
	aiRequestBucketStart  = 0.5
	aiRequestBucketFactor = 2.0
	aiRequestBucketCount  = 8
)

var PipelineDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name: "after_call_pipeline_duration_seconds",
		Help: "Time taken to run the after-call pipeline for one call",
		Buckets: prometheus.ExponentialBuckets(
			pipelineDurationBucketStart,
			pipelineDurationBucketFactor,
			pipelineDurationBucketCount,
		),
	},
)

var AIRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "ai_request_duration_seconds",
		Help: "Time taken by one text-generation request",
		Buckets: prometheus.ExponentialBuckets(
			aiRequestBucketStart,
			aiRequestBucketFactor,
			aiRequestBucketCount,
		),
	},
	[]string{"model"},
)

var SinkFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sink_failures_total",
		Help: "Swallowed persistence failures per sink and record kind",
	},
	[]string{"sink", "record_kind"},
)

var CircuitOpen = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "circuit_open_total",
		Help: "Circuit breaker transitions into the open state",
	},
	[]string{"service"},
)

func init() {
	prometheus.MustRegister(PipelineDuration)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(SinkFailures)
	prometheus.MustRegister(CircuitOpen)
}
