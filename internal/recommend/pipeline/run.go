// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/algorithms"
)

// ErrUnknownItem is returned by SimilarItems for an item outside the
// affinity universe.
var ErrUnknownItem = errors.New("item not in affinity universe")

// StageTiming is the wall time of one build stage.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration_ns"`
}

// Stats describes how a run was built.
type Stats struct {
	Build    algorithms.BuildStats `json:"build"`
	Stages   []StageTiming         `json:"stages"`
	Duration time.Duration         `json:"duration_ns"`
}

// Summary is the shape of a built run.
type Summary struct {
	RunID           string    `json:"run_id"`
	StartedAt       time.Time `json:"started_at"`
	PublisherID     string    `json:"publisher_id"`
	SubscriberCount int       `json:"subscriber_count"`
	ScopeItems      int       `json:"scope_items"`
	MatrixUsers     int       `json:"matrix_users"`
	MatrixItems     int       `json:"matrix_items"`
	AffinityItems   int       `json:"affinity_items"`
	FallbackWindow  int       `json:"fallback_window"`
	FallbackEvents  int       `json:"fallback_events"`
}

// Neighbor is one entry of a similar-items query.
type Neighbor struct {
	ItemID     string  `json:"item_id"`
	Similarity float64 `json:"similarity"`
}

// Run is the result of building one snapshot. All fields are read-only after
// Build returns, and every method is safe for concurrent use.
type Run struct {
	ID        string
	StartedAt time.Time
	Stats     Stats

	cfg      *recommend.Config
	snapshot *recommend.Snapshot
	workers  int
	logger   zerolog.Logger

	matrix *recommend.EngagementMatrix // every user and item that survived the filter
	scoped *recommend.EngagementMatrix // scope subscribers x scope items
	scope  *recommend.ContentScope

	collabFull *recommend.SimilarityMatrix // over all scoped items, used for credit
	collab     *recommend.SimilarityMatrix // aligned
	content    *recommend.SimilarityMatrix // aligned

	affinity   map[recommend.Method]*recommend.SimilarityMatrix
	generators map[recommend.Method]*algorithms.Generator
	fallback   *algorithms.FallbackPolicy
	evaluator  *algorithms.Evaluator
}

// stage runs one build step, recording its duration.
func (r *Run) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)

	r.Stats.Stages = append(r.Stats.Stages, StageTiming{Stage: name, Duration: d})
	metrics.RecordPipelineStage(name, d)
	r.logger.Debug().Str("stage", name).Dur("duration", d).Err(err).Msg("Stage finished")

	if err != nil {
		return fmt.Errorf("%s stage: %w", name, err)
	}
	return nil
}

// Config returns the engine configuration the run was built with.
func (r *Run) Config() *recommend.Config {
	return r.cfg.Clone()
}

// Snapshot returns the records the run was built from.
func (r *Run) Snapshot() *recommend.Snapshot {
	return r.snapshot
}

// Scope returns the content scope.
func (r *Run) Scope() *recommend.ContentScope {
	return r.scope
}

// Matrix returns the scoped engagement matrix.
func (r *Run) Matrix() *recommend.EngagementMatrix {
	return r.scoped
}

// Fallback returns the popularity fallback policy.
func (r *Run) Fallback() *algorithms.FallbackPolicy {
	return r.fallback
}

// Affinity returns the affinity matrix of a personalized method.
func (r *Run) Affinity(method recommend.Method) (*recommend.SimilarityMatrix, bool) {
	m, ok := r.affinity[method]
	return m, ok
}

// Summary describes the run.
func (r *Run) Summary() Summary {
	return Summary{
		RunID:           r.ID,
		StartedAt:       r.StartedAt,
		PublisherID:     r.scope.PublisherID,
		SubscriberCount: r.scope.SubscriberCount,
		ScopeItems:      r.scope.Size(),
		MatrixUsers:     r.scoped.NumUsers(),
		MatrixItems:     r.scoped.NumItems(),
		AffinityItems:   r.collab.Size(),
		FallbackWindow:  r.fallback.Window(),
		FallbackEvents:  r.fallback.Events(),
	}
}

// Recommend returns at most n unseen scope items for a user.
//
// Personalized methods use the generator and top up from the fallback
// policy when the generator yields fewer than n items; the heuristic method
// uses the fallback policy alone. Seen items and items already chosen are
// never added by the top-up.
func (r *Run) Recommend(userID string, n int, method recommend.Method) recommend.RecommendationList {
	list := r.recommend(userID, n, method)
	metrics.RecordRecommendation(method.String(), string(list.Source), list.Len())
	return list
}

func (r *Run) recommend(userID string, n int, method recommend.Method) recommend.RecommendationList {
	empty := recommend.RecommendationList{UserID: userID, Source: recommend.SourceNone}
	if n <= 0 {
		return empty
	}

	exclude := r.seen(userID)

	gen, ok := r.generators[method]
	if !ok {
		// heuristic, or a method without a generator
		return r.fallback.Recommend(userID, n, exclude).List(userID)
	}

	list := gen.Recommend(userID, n)
	if list.Len() >= n {
		return list
	}

	for _, item := range list.Items {
		exclude[item] = struct{}{}
	}
	extra := r.fallback.Recommend(userID, n-list.Len(), exclude)
	if len(extra.Items) == 0 {
		return list
	}
	if list.Len() == 0 {
		return extra.List(userID)
	}

	list.Items = append(list.Items, extra.Items...)
	for _, c := range extra.Counts {
		list.Scores = append(list.Scores, float64(c))
	}
	list.Source = recommend.SourceMixed
	return list
}

// seen returns the items the user engaged with anywhere in the snapshot.
func (r *Run) seen(userID string) map[string]struct{} {
	row, ok := r.matrix.Row(userID)
	seen := make(map[string]struct{}, len(row))
	if !ok {
		return seen
	}
	for item := range row {
		seen[item] = struct{}{}
	}
	return seen
}

// RecommendAll recommends for every user in parallel. Results keep the
// order of users.
func (r *Run) RecommendAll(ctx context.Context, users []string, n int, method recommend.Method) ([]recommend.RecommendationList, error) {
	lists := make([]recommend.RecommendationList, len(users))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, u := range users {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lists[i] = r.Recommend(u, n, method)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lists, nil
}

// Evaluate scores a method over the given users.
func (r *Run) Evaluate(ctx context.Context, method recommend.Method, n int, users []string) (recommend.MethodReport, error) {
	lists, err := r.RecommendAll(ctx, users, n, method)
	if err != nil {
		return recommend.MethodReport{}, err
	}

	scores := make([]algorithms.UserScore, len(lists))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range lists {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores[i] = r.evaluator.ScoreUser(lists[i].UserID, lists[i].Items)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return recommend.MethodReport{}, err
	}

	report := r.evaluator.Aggregate(method, n, lists, scores)
	metrics.RecordEvaluation(method.String(), report.ExactPrecision, report.SimilarityPrecision, report.Coverage)

	r.logger.Info().
		Str("method", method.String()).
		Int("n", n).
		Int("users_evaluated", report.UsersEvaluated).
		Int("users_requested", report.UsersRequested).
		Float64("precision_exact", report.ExactPrecision).
		Float64("precision_similarity", report.SimilarityPrecision).
		Float64("coverage", report.Coverage).
		Msg("Method evaluated")

	return report, nil
}

// Compare evaluates every method on the same users, in AllMethods order.
func (r *Run) Compare(ctx context.Context, n int, users []string) ([]recommend.MethodReport, error) {
	reports := make([]recommend.MethodReport, 0, len(recommend.AllMethods))
	for _, m := range recommend.AllMethods {
		report, err := r.Evaluate(ctx, m, n, users)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", m, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// SelectUsers picks an evaluation cohort from the scoped matrix.
func (r *Run) SelectUsers(strategy algorithms.SelectionStrategy, count int) []string {
	return algorithms.SelectUsers(r.scoped, strategy, count)
}

// Users returns every user of the scoped matrix in ascending order.
func (r *Run) Users() []string {
	return r.scoped.Users()
}

// SimilarItems returns the k items most similar to itemID under the
// collaborative, content or hybrid matrix, excluding the item itself.
// Ties break by ascending item ID.
func (r *Run) SimilarItems(itemID string, k int, kind recommend.Method) ([]Neighbor, error) {
	var sim *recommend.SimilarityMatrix
	switch kind {
	case recommend.MethodCollaborative:
		sim = r.collab
	case recommend.MethodContent:
		sim = r.content
	case recommend.MethodHybrid:
		sim = r.affinity[recommend.MethodHybrid]
	default:
		return nil, fmt.Errorf("%w: %q has no similarity matrix", recommend.ErrUnknownMethod, kind)
	}

	idx, ok := sim.Index(itemID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	if k <= 0 {
		return []Neighbor{}, nil
	}

	row := sim.Row(idx)
	items := sim.Items()
	out := make([]Neighbor, 0, len(items)-1)
	for j, id := range items {
		if j == idx {
			continue
		}
		out = append(out, Neighbor{ItemID: id, Similarity: row[j]})
	}
	sortNeighbors(out)
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func sortNeighbors(n []Neighbor) {
	sort.Slice(n, func(i, j int) bool {
		if n[i].Similarity != n[j].Similarity {
			return n[i].Similarity > n[j].Similarity
		}
		return n[i].ItemID < n[j].ItemID
	})
}
