// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package metrics provides Prometheus metrics collection and export for observability.

All metrics are registered on the default registry through promauto and
exposed by the API server at /metrics:

	curl http://localhost:8080/metrics

# Available Metrics

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type
  - duckdb_rows_loaded: Rows read per record set by the last load (gauge)

Pipeline Metrics:
  - pipeline_runs_total: Runs by result (counter)
    Labels: result (success, empty_matrix, alignment, error)
  - pipeline_stage_duration_seconds: Stage timings (histogram)
    Labels: stage (load, matrix, scope, collaborative, content, blend, total)
  - pipeline_last_success_timestamp: Unix time of the last good run (gauge)
  - engagement_matrix_users, engagement_matrix_items, content_scope_items (gauges)
  - engagement_records_dropped_total: Records dropped by reason (counter)

Recommendation Metrics:
  - recommendations_served_total: Lists served (counter)
    Labels: method, source
  - recommendation_list_length: List sizes (histogram)
  - evaluation_precision: Last precision per method (gauge)
    Labels: method, kind (exact, similarity)
  - evaluation_coverage_ratio: Last coverage per method (gauge)

API Metrics:
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - api_rate_limit_hits_total

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: Labels: name, result
  - circuit_breaker_consecutive_failures (gauge)
  - circuit_breaker_state_transitions_total: Labels: name, from_state, to_state

Snapshot Watcher Metrics:
  - snapshot_changes_total: Labels: outcome (triggered, throttled)

# Usage

	start := time.Now()
	rows, err := db.QueryContext(ctx, query)
	metrics.RecordDBQuery("select", "events", time.Since(start), err)

# Thread Safety

Every collector is safe for concurrent use.
*/
package metrics
