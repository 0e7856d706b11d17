// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// getGaugeValue extracts the value from a Prometheus gauge
func getGaugeValue(gauge prometheus.Gauge) float64 {
	var m io_prometheus_client.Metric
	if err := gauge.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		err       error
		wantErr   string
	}{
		{
			name:      "successful load",
			operation: "select",
			table:     "events",
		},
		{
			name:      "failed query with short error",
			operation: "describe",
			table:     "items",
			err:       errors.New("table not found"),
			wantErr:   "table not found",
		},
		{
			name:      "long error truncated to 50 chars",
			operation: "select",
			table:     "users",
			err:       errors.New(strings.Repeat("x", 80)),
			wantErr:   strings.Repeat("x", 50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before float64
			if tt.err != nil {
				before = testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table, tt.wantErr))
			}

			RecordDBQuery(tt.operation, tt.table, 10*time.Millisecond, tt.err)

			if tt.err == nil {
				return
			}
			after := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table, tt.wantErr))
			if after != before+1 {
				t.Errorf("error counter = %f, want %f", after, before+1)
			}
		})
	}
}

func TestRecordPipelineRun(t *testing.T) {
	before := testutil.ToFloat64(PipelineRunsTotal.WithLabelValues("success"))
	RecordPipelineRun("success", 2*time.Second)
	if got := testutil.ToFloat64(PipelineRunsTotal.WithLabelValues("success")); got != before+1 {
		t.Errorf("success runs = %f, want %f", got, before+1)
	}
	if getGaugeValue(PipelineLastSuccess) <= 0 {
		t.Error("last success timestamp not set")
	}

	beforeFail := testutil.ToFloat64(PipelineRunsTotal.WithLabelValues("empty_matrix"))
	RecordPipelineRun("empty_matrix", time.Millisecond)
	if got := testutil.ToFloat64(PipelineRunsTotal.WithLabelValues("empty_matrix")); got != beforeFail+1 {
		t.Errorf("empty_matrix runs = %f, want %f", got, beforeFail+1)
	}

	RecordPipelineStage("matrix", 5*time.Millisecond)
}

func TestRecordMatrixShape(t *testing.T) {
	RecordMatrixShape(120, 45, 40)

	if got := getGaugeValue(MatrixUsers); got != 120 {
		t.Errorf("MatrixUsers = %f, want 120", got)
	}
	if got := getGaugeValue(MatrixItems); got != 45 {
		t.Errorf("MatrixItems = %f, want 45", got)
	}
	if got := getGaugeValue(ScopeItems); got != 40 {
		t.Errorf("ScopeItems = %f, want 40", got)
	}
}

func TestRecordDroppedRecords(t *testing.T) {
	before := testutil.ToFloat64(EngagementRecordsDropped.WithLabelValues("low_engagement"))

	RecordDroppedRecords("low_engagement", 7)
	RecordDroppedRecords("low_engagement", 0)

	if got := testutil.ToFloat64(EngagementRecordsDropped.WithLabelValues("low_engagement")); got != before+7 {
		t.Errorf("dropped = %f, want %f", got, before+7)
	}
}

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendationsServed.WithLabelValues("hybrid", "fallback"))
	RecordRecommendation("hybrid", "fallback", 3)
	if got := testutil.ToFloat64(RecommendationsServed.WithLabelValues("hybrid", "fallback")); got != before+1 {
		t.Errorf("served = %f, want %f", got, before+1)
	}
}

func TestRecordEvaluation(t *testing.T) {
	RecordEvaluation("content", 0.25, 0.6, 0.4)

	if got := testutil.ToFloat64(EvaluationPrecision.WithLabelValues("content", "exact")); got != 0.25 {
		t.Errorf("exact = %f, want 0.25", got)
	}
	if got := testutil.ToFloat64(EvaluationPrecision.WithLabelValues("content", "similarity")); got != 0.6 {
		t.Errorf("similarity = %f, want 0.6", got)
	}
	if got := testutil.ToFloat64(EvaluationCoverage.WithLabelValues("content")); got != 0.4 {
		t.Errorf("coverage = %f, want 0.4", got)
	}
}

func TestRecordSnapshotChange(t *testing.T) {
	triggered := testutil.ToFloat64(SnapshotChanges.WithLabelValues("triggered"))
	throttled := testutil.ToFloat64(SnapshotChanges.WithLabelValues("throttled"))

	RecordSnapshotChange(true)
	RecordSnapshotChange(false)
	RecordSnapshotChange(false)

	if got := testutil.ToFloat64(SnapshotChanges.WithLabelValues("triggered")); got != triggered+1 {
		t.Errorf("triggered = %f, want %f", got, triggered+1)
	}
	if got := testutil.ToFloat64(SnapshotChanges.WithLabelValues("throttled")); got != throttled+2 {
		t.Errorf("throttled = %f, want %f", got, throttled+2)
	}
}

// TestTrackActiveRequest tests the active request gauge
func TestTrackActiveRequest(t *testing.T) {
	start := getGaugeValue(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := getGaugeValue(APIActiveRequests); got != start+2 {
		t.Errorf("active = %f, want %f", got, start+2)
	}

	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := getGaugeValue(APIActiveRequests); got != start {
		t.Errorf("active = %f, want %f", got, start)
	}
}

// TestCircuitBreakerMetrics tests circuit breaker metric recording
func TestCircuitBreakerMetrics(t *testing.T) {
	cbName := "snapshot-loader-test"

	CircuitBreakerState.WithLabelValues(cbName).Set(2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues(cbName)); got != 2 {
		t.Errorf("state = %f, want 2", got)
	}

	CircuitBreakerTransitions.WithLabelValues(cbName, "closed", "open").Inc()
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues(cbName, "closed", "open")); got != 1 {
		t.Errorf("transitions = %f, want 1", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/scope", "200"))
	RecordAPIRequest("GET", "/api/v1/scope", "200", 3*time.Millisecond)
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/scope", "200")); got != before+1 {
		t.Errorf("requests = %f, want %f", got, before+1)
	}
}
