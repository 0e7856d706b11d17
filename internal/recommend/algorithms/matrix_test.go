// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package algorithms

import (
	"errors"
	"math"
	"testing"

	"github.com/tomtom215/affinity/internal/recommend"
)

var defaultThresholds = recommend.EngagementThresholds{MinFraction: 0.05, MinSeconds: 30}

func view(user, item string, seconds float64) recommend.InteractionEvent {
	return recommend.InteractionEvent{
		UserID:        user,
		ItemID:        item,
		SecondsViewed: seconds,
		Date:          recommend.ServiceDate{Year: 1, Month: "Frostmere", Day: 1},
	}
}

func itemMap(items ...recommend.Item) map[string]recommend.Item {
	m := make(map[string]recommend.Item, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}

func TestBuildEngagementMatrix(t *testing.T) {
	t.Parallel()

	items := itemMap(
		recommend.Item{ID: "long", Minutes: 12.5}, // 750 seconds
		recommend.Item{ID: "short", Minutes: 1},
		recommend.Item{ID: "zero", Minutes: 0},
	)

	tests := []struct {
		name      string
		events    []recommend.InteractionEvent
		wantScore map[string]float64 // item -> score for user u
		wantStats BuildStats
	}{
		{
			name:      "duplicate keeps greatest seconds",
			events:    []recommend.InteractionEvent{view("u", "long", 75), view("u", "long", 375)},
			wantScore: map[string]float64{"long": 0.5},
			wantStats: BuildStats{RawEvents: 2, Pairs: 1, Kept: 1, Users: 1, Items: 1},
		},
		{
			name:      "duplicate order does not matter",
			events:    []recommend.InteractionEvent{view("u", "long", 375), view("u", "long", 75)},
			wantScore: map[string]float64{"long": 0.5},
			wantStats: BuildStats{RawEvents: 2, Pairs: 1, Kept: 1, Users: 1, Items: 1},
		},
		{
			name:      "29 seconds at 0.04 fraction is dropped",
			events:    []recommend.InteractionEvent{view("u", "long", 29), view("u", "short", 60)},
			wantScore: map[string]float64{"short": 1},
			wantStats: BuildStats{RawEvents: 2, Pairs: 2, LowEngagement: 1, Kept: 1, Users: 1, Items: 1},
		},
		{
			name:      "30 seconds at 0.04 fraction is kept",
			events:    []recommend.InteractionEvent{view("u", "long", 30)},
			wantScore: map[string]float64{"long": 0.04},
			wantStats: BuildStats{RawEvents: 1, Pairs: 1, Kept: 1, Users: 1, Items: 1},
		},
		{
			name:      "score clipped to one",
			events:    []recommend.InteractionEvent{view("u", "short", 600)},
			wantScore: map[string]float64{"short": 1},
			wantStats: BuildStats{RawEvents: 1, Pairs: 1, Kept: 1, Users: 1, Items: 1},
		},
		{
			name: "zero duration and unknown item dropped",
			events: []recommend.InteractionEvent{
				view("u", "zero", 100), view("u", "ghost", 100), view("u", "long", 400),
			},
			wantScore: map[string]float64{"long": 400.0 / 750},
			wantStats: BuildStats{RawEvents: 3, Pairs: 3, MissingDuration: 2, Kept: 1, Users: 1, Items: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, stats, err := BuildEngagementMatrix(tt.events, items, defaultThresholds)
			if err != nil {
				t.Fatalf("BuildEngagementMatrix() error = %v", err)
			}
			if stats != tt.wantStats {
				t.Errorf("stats = %+v, want %+v", stats, tt.wantStats)
			}

			row, ok := m.Row("u")
			if !ok {
				t.Fatal("user u missing from matrix")
			}
			if len(row) != len(tt.wantScore) {
				t.Errorf("row = %v, want %v", row, tt.wantScore)
			}
			for item, want := range tt.wantScore {
				got, ok := row[item]
				if !ok {
					t.Errorf("item %s missing from row", item)
					continue
				}
				if math.Abs(got-want) > 1e-12 {
					t.Errorf("score(%s) = %f, want %f", item, got, want)
				}
				if got < 0 || got > 1 {
					t.Errorf("score(%s) = %f outside [0, 1]", item, got)
				}
			}
		})
	}
}

func TestBuildEngagementMatrix_Empty(t *testing.T) {
	t.Parallel()

	events := []recommend.InteractionEvent{view("u", "long", 5), view("v", "zero", 500)}
	items := itemMap(recommend.Item{ID: "long", Minutes: 12.5}, recommend.Item{ID: "zero"})

	m, _, err := BuildEngagementMatrix(events, items, defaultThresholds)
	if m != nil {
		t.Errorf("matrix = %v, want nil", m)
	}

	var emptyErr *recommend.EmptyMatrixError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("error = %v, want *EmptyMatrixError", err)
	}
	if emptyErr.Stage != "filter" || emptyErr.Events != 2 {
		t.Errorf("EmptyMatrixError = %+v, want stage filter with 2 events", emptyErr)
	}
}
