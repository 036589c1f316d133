// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelStatus  = "status"
	LabelStage   = "stage"
	LabelStep    = "step"
	LabelOutcome = "outcome"
	LabelAPI     = "api"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

var (
	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deploy",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Pipeline runs by terminal status.",
	}, []string{LabelStatus})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "deploy",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Duration of each pipeline stage, in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 3, 8), // top bucket ~= 2 minutes
	}, []string{LabelStage})

	TeardownSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deploy",
		Subsystem: "teardown",
		Name:      "steps_total",
		Help:      "Teardown steps by outcome.",
	}, []string{LabelStep, LabelOutcome})

	ExternalRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deploy",
		Name:      "external_requests_total",
		Help:      "Calls to the source-host and hosting APIs by outcome.",
	}, []string{LabelAPI, LabelOutcome})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "deploy",
		Subsystem: "pipeline",
		Name:      "queue_depth",
		Help:      "Pipeline runs waiting for a worker.",
	})
)

// Outcome maps an error to the outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// ObserveExternal counts one outbound API call.
func ObserveExternal(api string, err error) {
	ExternalRequests.WithLabelValues(api, Outcome(err)).Inc()
}

// ObserveStage records how long stage took since begin.
func ObserveStage(stage string, begin time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(begin).Seconds())
}
