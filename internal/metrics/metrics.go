// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Record store queries (DuckDB)
// - Pipeline runs and stage timings
// - Recommendation serving and evaluation
// - API endpoint latency and throughput
// - Circuit breaker and snapshot watcher behaviour

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBRowsLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "duckdb_rows_loaded",
			Help: "Rows read from each record set by the last snapshot load",
		},
		[]string{"table"}, // events, items, users, subscriptions
	)

	// Pipeline Metrics
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of recommendation pipeline runs",
		},
		[]string{"result"}, // success, empty_matrix, alignment, error
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"stage"},
	)

	PipelineLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_last_success_timestamp",
			Help: "Unix timestamp of the last successful pipeline run",
		},
	)

	MatrixUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engagement_matrix_users",
			Help: "Users in the scoped engagement matrix of the current run",
		},
	)

	MatrixItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engagement_matrix_items",
			Help: "Items in the scoped engagement matrix of the current run",
		},
	)

	ScopeItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "content_scope_items",
			Help: "Items eligible for recommendation in the current run",
		},
	)

	EngagementRecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_records_dropped_total",
			Help: "Deduplicated engagement records dropped during matrix construction",
		},
		[]string{"reason"}, // missing_duration, low_engagement
	)

	// Recommendation Metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommendation lists served",
		},
		[]string{"method", "source"},
	)

	RecommendationListLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_list_length",
			Help:    "Number of items in served recommendation lists",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
	)

	EvaluationPrecision = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "evaluation_precision",
			Help: "Precision of the last evaluation per method",
		},
		[]string{"method", "kind"}, // kind: exact, similarity
	)

	EvaluationCoverage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "evaluation_coverage_ratio",
			Help: "Unique recommended items over scope size of the last evaluation",
		},
		[]string{"method"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Snapshot Watcher Metrics
	SnapshotChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_changes_total",
			Help: "Record store file changes seen by the snapshot watcher",
		},
		[]string{"outcome"}, // triggered, throttled
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordPipelineRun records the outcome of a pipeline run. result is one of
// success, empty_matrix, alignment or error.
func RecordPipelineRun(result string, duration time.Duration) {
	PipelineRunsTotal.WithLabelValues(result).Inc()
	PipelineStageDuration.WithLabelValues("total").Observe(duration.Seconds())
	if result == "success" {
		PipelineLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordPipelineStage records the duration of one pipeline stage.
func RecordPipelineStage(stage string, duration time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordMatrixShape updates the size gauges of the current run.
func RecordMatrixShape(users, items, scopeItems int) {
	MatrixUsers.Set(float64(users))
	MatrixItems.Set(float64(items))
	ScopeItems.Set(float64(scopeItems))
}

// RecordDroppedRecords counts engagement records dropped for a reason.
func RecordDroppedRecords(reason string, count int) {
	if count <= 0 {
		return
	}
	EngagementRecordsDropped.WithLabelValues(reason).Add(float64(count))
}

// RecordRecommendation records one served recommendation list.
func RecordRecommendation(method, source string, length int) {
	RecommendationsServed.WithLabelValues(method, source).Inc()
	RecommendationListLength.Observe(float64(length))
}

// RecordEvaluation stores the latest evaluation result of a method.
func RecordEvaluation(method string, exact, similarity, coverage float64) {
	EvaluationPrecision.WithLabelValues(method, "exact").Set(exact)
	EvaluationPrecision.WithLabelValues(method, "similarity").Set(similarity)
	EvaluationCoverage.WithLabelValues(method).Set(coverage)
}

// RecordSnapshotChange counts a watched file change and whether it
// triggered a rebuild.
func RecordSnapshotChange(triggered bool) {
	if triggered {
		SnapshotChanges.WithLabelValues("triggered").Inc()
		return
	}
	SnapshotChanges.WithLabelValues("throttled").Inc()
}
