// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StageExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_executions_total",
			Help: "Total number of stage executions by stage",
		},
		[]string{"stage"},
	)

	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_failures_total",
			Help: "Total number of stage failures by stage and error code",
		},
		[]string{"stage", "error_code"},
	)

	StageParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_parse_failures_total",
			Help: "Total number of stage responses that failed JSON extraction",
		},
		[]string{"stage"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Duration of stage execution in seconds",
		},
		[]string{"stage"},
	)

	ResultsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_results_persisted_total",
			Help: "Total number of processing results persisted",
		},
	)
)
