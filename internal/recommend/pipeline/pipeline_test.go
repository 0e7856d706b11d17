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

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/algorithms"
)

func strPtr(s string) *string { return &s }

func view(user, item string, seconds float64) recommend.InteractionEvent {
	return recommend.InteractionEvent{
		UserID:        user,
		ItemID:        item,
		SecondsViewed: seconds,
		Date:          recommend.ServiceDate{Year: 2, Month: "Lunaris", Day: 3},
	}
}

// testSnapshot: publisher p1 has three subscribers (u1, u2, u3) and the
// scope i1..i5; u5 subscribes to p2 and is outside the scope.
func testSnapshot() *recommend.Snapshot {
	items := []recommend.Item{
		{ID: "i1", Minutes: 10, Genre: strPtr("g1")},
		{ID: "i2", Minutes: 10, Genre: strPtr("g1")},
		{ID: "i3", Minutes: 10, Genre: strPtr("g2")},
		{ID: "i4", Minutes: 10, Genre: strPtr("g2")},
		{ID: "i5", Minutes: 20, Genre: strPtr("g1")},
		{ID: "i6", Minutes: 10},
	}
	events := []recommend.InteractionEvent{
		view("u1", "i1", 600), view("u1", "i2", 300), view("u1", "i3", 60),
		view("u2", "i1", 500), view("u2", "i2", 600), view("u2", "i4", 300), view("u2", "i5", 1200),
		view("u3", "i3", 600), view("u3", "i4", 400),
		view("u5", "i6", 600), view("u5", "i1", 600),
	}
	subs := []recommend.Subscription{
		{UserID: "u1", PublisherID: "p1"},
		{UserID: "u2", PublisherID: "p1"},
		{UserID: "u3", PublisherID: "p1"},
		{UserID: "u5", PublisherID: "p2"},
	}
	return recommend.NewSnapshot(events, items, nil, subs)
}

func buildTestRun(t *testing.T) *Run {
	t.Helper()
	engine, err := NewEngine(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	run, err := engine.Build(context.Background(), testSnapshot())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return run
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := recommend.DefaultConfig()
	cfg.Blend.Alpha = 0.9
	if _, err := NewEngine(cfg, zerolog.Nop()); err == nil {
		t.Fatal("NewEngine() = nil error, want invalid config")
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	run := buildTestRun(t)

	if _, err := uuid.Parse(run.ID); err != nil {
		t.Errorf("run ID %q is not a UUID: %v", run.ID, err)
	}

	want := Summary{
		RunID:           run.ID,
		StartedAt:       run.StartedAt,
		PublisherID:     "p1",
		SubscriberCount: 3,
		ScopeItems:      5,
		MatrixUsers:     3,
		MatrixItems:     5,
		AffinityItems:   5,
		FallbackWindow:  120,
		FallbackEvents:  9,
	}
	if got := run.Summary(); got != want {
		t.Errorf("Summary() = %+v, want %+v", got, want)
	}

	var stages []string
	for _, s := range run.Stats.Stages {
		stages = append(stages, s.Stage)
	}
	wantStages := []string{StageMatrix, StageScope, StageCollaborative, StageContent, StageBlend, StageFallback}
	if !reflect.DeepEqual(stages, wantStages) {
		t.Errorf("stages = %v, want %v", stages, wantStages)
	}
	if run.Stats.Build.RawEvents != 11 || run.Stats.Build.Kept != 11 {
		t.Errorf("build stats = %+v", run.Stats.Build)
	}

	for _, m := range []recommend.Method{recommend.MethodHybrid, recommend.MethodCollaborative, recommend.MethodContent} {
		if _, ok := run.Affinity(m); !ok {
			t.Errorf("Affinity(%s) missing", m)
		}
	}
	if _, ok := run.Affinity(recommend.MethodHeuristic); ok {
		t.Error("heuristic must not have an affinity matrix")
	}
}

func TestBuild_StructuralErrors(t *testing.T) {
	t.Parallel()

	snap := testSnapshot()

	tests := []struct {
		name      string
		snap      *recommend.Snapshot
		wantStage string
	}{
		{
			name:      "no events",
			snap:      recommend.NewSnapshot(nil, snap.Items, nil, snap.Subscriptions),
			wantStage: "filter",
		},
		{
			name:      "no subscriptions",
			snap:      recommend.NewSnapshot(snap.Events, snap.Items, nil, nil),
			wantStage: "scope",
		},
		{
			name: "subscribers without engagement",
			snap: recommend.NewSnapshot(snap.Events, snap.Items, nil, []recommend.Subscription{
				{UserID: "nobody", PublisherID: "p9"},
			}),
			wantStage: "scope",
		},
	}

	engine, err := NewEngine(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := engine.Build(context.Background(), tt.snap)
			var emptyErr *recommend.EmptyMatrixError
			if !errors.As(err, &emptyErr) {
				t.Fatalf("Build() error = %v, want *EmptyMatrixError", err)
			}
			if emptyErr.Stage != tt.wantStage {
				t.Errorf("Stage = %q, want %q", emptyErr.Stage, tt.wantStage)
			}
			if !errors.Is(err, recommend.ErrEmptyMatrix) {
				t.Error("errors.Is(err, ErrEmptyMatrix) = false")
			}
		})
	}
}

func TestBuild_Cancelled(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Build(ctx, testSnapshot()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Build() error = %v, want context.Canceled", err)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	t.Parallel()

	a := buildTestRun(t)
	b := buildTestRun(t)

	if a.ID == b.ID {
		t.Error("runs must get distinct IDs")
	}

	ma, mb := a.Matrix(), b.Matrix()
	if !reflect.DeepEqual(ma.Users(), mb.Users()) || !reflect.DeepEqual(ma.Items(), mb.Items()) {
		t.Fatalf("matrix axes differ: %v/%v vs %v/%v", ma.Users(), ma.Items(), mb.Users(), mb.Items())
	}
	for _, u := range ma.Users() {
		ra, _ := ma.Row(u)
		rb, _ := mb.Row(u)
		if !reflect.DeepEqual(ra, rb) {
			t.Errorf("matrix row %s: %v != %v", u, ra, rb)
		}
	}

	for _, m := range recommend.AllMethods {
		sa, okA := a.Affinity(m)
		sb, okB := b.Affinity(m)
		if okA != okB {
			t.Fatalf("%s: affinity present = %v vs %v", m, okA, okB)
		}
		if !okA {
			continue
		}
		if !reflect.DeepEqual(sa.Items(), sb.Items()) {
			t.Fatalf("%s: affinity items %v != %v", m, sa.Items(), sb.Items())
		}
		for i := 0; i < sa.Size(); i++ {
			if !reflect.DeepEqual(sa.Row(i), sb.Row(i)) {
				t.Errorf("%s: affinity row %d: %v != %v", m, i, sa.Row(i), sb.Row(i))
			}
		}
	}
	for _, m := range recommend.AllMethods {
		for _, u := range []string{"u1", "u2", "u3", "u5", "ghost"} {
			la, lb := a.Recommend(u, 3, m), b.Recommend(u, 3, m)
			if !reflect.DeepEqual(la, lb) {
				t.Errorf("%s/%s: %+v != %+v", m, u, la, lb)
			}
		}
	}
}

func TestBuildResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, "success"},
		{&recommend.EmptyMatrixError{Stage: "filter"}, "empty_matrix"},
		{&recommend.AlignmentError{Reason: "no common items"}, "alignment"},
		{context.Canceled, "cancelled"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := buildResult(tt.err); got != tt.want {
			t.Errorf("buildResult(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestHolder(t *testing.T) {
	t.Parallel()

	var h Holder
	if h.Load() != nil {
		t.Fatal("zero Holder must hold no run")
	}

	first := &Run{ID: "a"}
	second := &Run{ID: "b"}
	if prev := h.Store(first); prev != nil {
		t.Errorf("first Store() returned %v, want nil", prev)
	}
	if prev := h.Store(second); prev != first {
		t.Errorf("Store() returned %v, want first run", prev)
	}
	if h.Load() != second {
		t.Error("Load() did not return the latest run")
	}
}

func TestSelectUsers(t *testing.T) {
	t.Parallel()

	run := buildTestRun(t)
	got := run.SelectUsers(algorithms.SelectTop, 2)
	if want := []string{"u2", "u3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SelectUsers(top, 2) = %v, want %v", got, want)
	}
	if got := run.Users(); !reflect.DeepEqual(got, []string{"u1", "u2", "u3"}) {
		t.Errorf("Users() = %v", got)
	}
}
