package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	transcriber = "transcriber"

	// Job metrics
	jobsSubmittedTotal     = "jobs_submitted_total"
	dispatchFailuresTotal  = "dispatch_failures_total"
	executionsTotal        = "executions_total"
	executionDuration      = "execution_duration_seconds"
	statusQueriesTotal     = "status_queries_total"
	artifactDownloadsTotal = "artifact_downloads_total"

	// Pool metrics
	poolQueueDepth = "dispatch_queue_depth"
	poolInFlight   = "dispatch_in_flight"

	// Labels
	modelTierLabel = "model"
	reasonLabel    = "reason"
	outcomeLabel   = "outcome"
	statusLabel    = "status"
	kindLabel      = "kind"
)

var jobsSubmittedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: transcriber,
		Name:      jobsSubmittedTotal,
		Help:      "number of accepted transcription jobs",
	},
	[]string{modelTierLabel},
)

var dispatchFailuresTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: transcriber,
		Name:      dispatchFailuresTotal,
		Help:      "number of submissions rejected before the job was dispatched",
	},
	[]string{reasonLabel},
)

var executionsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: transcriber,
		Name:      executionsTotal,
		Help:      "number of finished worker invocations",
	},
	[]string{outcomeLabel},
)

var executionDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: transcriber,
		Name:      executionDuration,
		Help:      "duration of worker invocations",
		Buckets:   []float64{10, 30, 60, 120, 300, 600, 1200, 3600},
	},
	[]string{outcomeLabel},
)

var statusQueriesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: transcriber,
		Name:      statusQueriesTotal,
		Help:      "number of status queries by resolved status",
	},
	[]string{statusLabel},
)

var artifactDownloadsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: transcriber,
		Name:      artifactDownloadsTotal,
		Help:      "number of artifact downloads",
	},
	[]string{kindLabel},
)

var poolQueueDepthMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: transcriber,
		Name:      poolQueueDepth,
		Help:      "invocations waiting for a free dispatch slot",
	},
)

var poolInFlightMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: transcriber,
		Name:      poolInFlight,
		Help:      "invocations currently running on the worker",
	},
)

func IncreaseJobsSubmittedMetric(modelTier string) {
	jobsSubmittedTotalMetric.With(prometheus.Labels{modelTierLabel: modelTier}).Inc()
}

func IncreaseDispatchFailuresMetric(reason string) {
	dispatchFailuresTotalMetric.With(prometheus.Labels{reasonLabel: reason}).Inc()
}

func ObserveExecution(outcome string, seconds float64) {
	executionsTotalMetric.With(prometheus.Labels{outcomeLabel: outcome}).Inc()
	executionDurationMetric.With(prometheus.Labels{outcomeLabel: outcome}).Observe(seconds)
}

func IncreaseStatusQueriesMetric(status string) {
	statusQueriesTotalMetric.With(prometheus.Labels{statusLabel: status}).Inc()
}

func IncreaseArtifactDownloadsMetric(kind string) {
	artifactDownloadsTotalMetric.With(prometheus.Labels{kindLabel: kind}).Inc()
}

func UpdatePoolQueueDepthMetric(depth int) {
	poolQueueDepthMetric.Set(float64(depth))
}

func UpdatePoolInFlightMetric(n int) {
	poolInFlightMetric.Set(float64(n))
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(jobsSubmittedTotalMetric)
	prometheus.MustRegister(dispatchFailuresTotalMetric)
	prometheus.MustRegister(executionsTotalMetric)
	prometheus.MustRegister(executionDurationMetric)
	prometheus.MustRegister(statusQueriesTotalMetric)
	prometheus.MustRegister(artifactDownloadsTotalMetric)
	prometheus.MustRegister(poolQueueDepthMetric)
	prometheus.MustRegister(poolInFlightMetric)
}
