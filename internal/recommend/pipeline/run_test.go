// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/algorithms"
)

func TestRun_Recommend(t *testing.T) {
	t.Parallel()

	run := buildTestRun(t)

	tests := []struct {
		name       string
		user       string
		n          int
		method     recommend.Method
		wantItems  []string
		wantSource recommend.RecommendationSource
	}{
		{"unknown user gets fallback", "ghost", 3, recommend.MethodHybrid, []string{"i1", "i2", "i3"}, recommend.SourceFallback},
		{"non-subscriber gets fallback minus seen", "u5", 3, recommend.MethodHybrid, []string{"i2", "i3", "i4"}, recommend.SourceFallback},
		{"hybrid short list", "u1", 3, recommend.MethodHybrid, []string{"i5", "i4"}, recommend.SourcePersonalized},
		{"hybrid single candidate", "u2", 3, recommend.MethodHybrid, []string{"i3"}, recommend.SourcePersonalized},
		{"hybrid full list", "u3", 3, recommend.MethodHybrid, []string{"i2", "i1", "i5"}, recommend.SourcePersonalized},
		{"collaborative", "u3", 2, recommend.MethodCollaborative, []string{"i2", "i5"}, recommend.SourcePersonalized},
		{"content", "u1", 1, recommend.MethodContent, []string{"i4"}, recommend.SourcePersonalized},
		{"heuristic ignores similarity", "u1", 3, recommend.MethodHeuristic, []string{"i4", "i5"}, recommend.SourceFallback},
		{"zero n", "u1", 0, recommend.MethodHybrid, nil, recommend.SourceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := run.Recommend(tt.user, tt.n, tt.method)
			if got.UserID != tt.user {
				t.Errorf("UserID = %q, want %q", got.UserID, tt.user)
			}
			if !reflect.DeepEqual(got.Items, tt.wantItems) {
				t.Errorf("Items = %v, want %v", got.Items, tt.wantItems)
			}
			if got.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", got.Source, tt.wantSource)
			}
			if len(got.Scores) != len(got.Items) {
				t.Errorf("len(Scores) = %d, want %d", len(got.Scores), len(got.Items))
			}

			seen := run.seen(tt.user)
			for _, item := range got.Items {
				if _, ok := seen[item]; ok {
					t.Errorf("recommended seen item %s", item)
				}
			}
		})
	}
}

func TestRun_Recommend_Mixed(t *testing.T) {
	t.Parallel()

	run := buildTestRun(t)

	// Shrink the hybrid universe so u1 has a single candidate and the
	// fallback has to fill the rest.
	small, err := run.affinity[recommend.MethodHybrid].Subset([]string{"i1", "i2", "i3", "i4"})
	if err != nil {
		t.Fatalf("Subset() error = %v", err)
	}
	run.generators[recommend.MethodHybrid] = algorithms.NewGenerator(small, run.scoped)

	got := run.Recommend("u1", 3, recommend.MethodHybrid)
	if want := []string{"i4", "i5"}; !reflect.DeepEqual(got.Items, want) {
		t.Fatalf("Items = %v, want %v", got.Items, want)
	}
	if got.Source != recommend.SourceMixed {
		t.Errorf("Source = %q, want %q", got.Source, recommend.SourceMixed)
	}
	if got.Scores[1] != 1 {
		t.Errorf("fallback score = %v, want event count 1", got.Scores[1])
	}
}

func TestRun_RecommendAll(t *testing.T) {
	t.Parallel()

	run := buildTestRun(t)
	users := []string{"u3", "ghost", "u1", "u2"}

	lists, err := run.RecommendAll(context.Background(), users, 3, recommend.MethodHybrid)
	if err != nil {
		t.Fatalf("RecommendAll() error = %v", err)
	}
	if len(lists) != len(users) {
		t.Fatalf("len(lists) = %d, want %d", len(lists), len(users))
	}
	for i, u := range users {
		if lists[i].UserID != u {
			t.Errorf("lists[%d].UserID = %q, want %q", i, lists[i].UserID, u)
		}
		if want := run.Recommend(u, 3, recommend.MethodHybrid); !reflect.DeepEqual(lists[i], want) {
			t.Errorf("lists[%d] = %+v, want %+v", i, lists[i], want)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := run.RecommendAll(ctx, users, 3, recommend.MethodHybrid); !errors.Is(err, context.Canceled) {
		t.Errorf("RecommendAll(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestRun_Evaluate(t *testing.T) {
	t.Parallel()

	run := buildTestRun(t)
	users := []string{"u1", "u2", "u3"}

	report, err := run.Evaluate(context.Background(), recommend.MethodHybrid, 3, users)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if report.Method != recommend.MethodHybrid || report.N != 3 {
		t.Errorf("report header = %s/%d", report.Method, report.N)
	}
	if report.UsersRequested != 3 || report.UsersEvaluated != 3 {
		t.Errorf("users requested/evaluated = %d/%d, want 3/3", report.UsersRequested, report.UsersEvaluated)
	}
	// Recommendations never repeat seen items, and liked items are seen.
	if report.ExactPrecision != 0 {
		t.Errorf("ExactPrecision = %v, want 0", report.ExactPrecision)
	}
	if report.RecommendedSlots != 6 {
		t.Errorf("RecommendedSlots = %d, want 6", report.RecommendedSlots)
	}
	if report.SimilarityPrecision <= 0 || report.SimilarityPrecision > 1 {
		t.Errorf("SimilarityPrecision = %v, want in (0, 1]", report.SimilarityPrecision)
	}
	if report.UniqueItems != 5 || report.Coverage != 1 {
		t.Errorf("unique/coverage = %d/%v, want 5/1", report.UniqueItems, report.Coverage)
	}
}

func TestRun_Compare(t *testing.T) {
	t.Parallel()

	run := buildTestRun(t)

	reports, err := run.Compare(context.Background(), 3, []string{"u1", "u2", "u3", "ghost"})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(reports) != len(recommend.AllMethods) {
		t.Fatalf("len(reports) = %d, want %d", len(reports), len(recommend.AllMethods))
	}
	for i, m := range recommend.AllMethods {
		if reports[i].Method != m {
			t.Errorf("reports[%d].Method = %s, want %s", i, reports[i].Method, m)
		}
		if reports[i].UsersRequested != 4 || reports[i].UsersEvaluated != 3 {
			t.Errorf("%s: requested/evaluated = %d/%d, want 4/3", m, reports[i].UsersRequested, reports[i].UsersEvaluated)
		}
	}
}

func TestRun_SimilarItems(t *testing.T) {
	t.Parallel()

	run := buildTestRun(t)

	t.Run("hybrid", func(t *testing.T) {
		t.Parallel()
		got, err := run.SimilarItems("i1", 2, recommend.MethodHybrid)
		if err != nil {
			t.Fatalf("SimilarItems() error = %v", err)
		}
		var ids []string
		for _, n := range got {
			ids = append(ids, n.ItemID)
		}
		if want := []string{"i2", "i5"}; !reflect.DeepEqual(ids, want) {
			t.Errorf("neighbors = %v, want %v", ids, want)
		}
	})

	t.Run("collaborative sorted", func(t *testing.T) {
		t.Parallel()
		got, err := run.SimilarItems("i1", 10, recommend.MethodCollaborative)
		if err != nil {
			t.Fatalf("SimilarItems() error = %v", err)
		}
		if len(got) != 4 {
			t.Fatalf("len = %d, want 4", len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].Similarity > got[i-1].Similarity {
				t.Errorf("neighbors not sorted: %+v", got)
			}
		}
		for _, n := range got {
			if n.ItemID == "i1" {
				t.Error("item must not be its own neighbor")
			}
		}
	})

	t.Run("zero k", func(t *testing.T) {
		t.Parallel()
		got, err := run.SimilarItems("i1", 0, recommend.MethodContent)
		if err != nil || len(got) != 0 {
			t.Errorf("SimilarItems(k=0) = %v, %v", got, err)
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		t.Parallel()
		if _, err := run.SimilarItems("i6", 3, recommend.MethodHybrid); !errors.Is(err, ErrUnknownItem) {
			t.Errorf("error = %v, want ErrUnknownItem", err)
		}
	})

	t.Run("heuristic has no matrix", func(t *testing.T) {
		t.Parallel()
		if _, err := run.SimilarItems("i1", 3, recommend.MethodHeuristic); !errors.Is(err, recommend.ErrUnknownMethod) {
			t.Errorf("error = %v, want ErrUnknownMethod", err)
		}
	})
}

func TestSortNeighbors(t *testing.T) {
	t.Parallel()

	got := []Neighbor{{"b", 0.5}, {"c", 0.9}, {"a", 0.5}}
	sortNeighbors(got)
	want := []Neighbor{{"c", 0.9}, {"a", 0.5}, {"b", 0.5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sortNeighbors() = %v, want %v", got, want)
	}
}
