// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package algorithms

import (
	"sort"

	"github.com/tomtom215/affinity/internal/recommend"
)

// Evaluator scores recommendation lists against the scope-restricted
// "liked" set of each user: scope items with engagement at or above
// LikedThreshold.
//
// Two precisions are reported. Exact precision counts hits over the
// requested list size. Similarity-credited precision gives a miss partial
// credit equal to its highest collaborative similarity to any liked item,
// when that similarity reaches SimilarityThreshold.
type Evaluator struct {
	cfg    recommend.EvaluationConfig
	matrix *recommend.EngagementMatrix
	scope  *recommend.ContentScope
	collab *recommend.SimilarityMatrix
}

// UserScore is the evaluation of one user's list.
type UserScore struct {
	UserID string
	// Evaluated is false when the user has no liked items.
	Evaluated bool
	Liked     int
	Hits      int
	Credit    float64
	Slots     int
}

// NewEvaluator creates an evaluator. matrix supplies engagement scores and
// collab the similarity used for partial credit.
//
//nolint:gocritic // hugeParam: config passed by value for immutability
func NewEvaluator(
	cfg recommend.EvaluationConfig,
	matrix *recommend.EngagementMatrix,
	scope *recommend.ContentScope,
	collab *recommend.SimilarityMatrix,
) *Evaluator {
	return &Evaluator{cfg: cfg, matrix: matrix, scope: scope, collab: collab}
}

// Liked returns the user's liked scope items in ascending ID order.
func (e *Evaluator) Liked(userID string) []string {
	row, ok := e.matrix.Row(userID)
	if !ok {
		return nil
	}
	liked := make([]string, 0, len(row))
	for item, score := range row {
		if score >= e.cfg.LikedThreshold && e.scope.Contains(item) {
			liked = append(liked, item)
		}
	}
	sort.Strings(liked)
	return liked
}

// ScoreUser evaluates one recommendation list. Users with no liked items are
// returned with Evaluated set to false and contribute nothing to a report.
func (e *Evaluator) ScoreUser(userID string, recs []string) UserScore {
	score := UserScore{UserID: userID}
	liked := e.Liked(userID)
	if len(liked) == 0 {
		return score
	}

	score.Evaluated = true
	score.Liked = len(liked)
	score.Slots = len(recs)

	likedSet := toSet(liked)
	for _, rec := range recs {
		if _, hit := likedSet[rec]; hit {
			score.Hits++
			score.Credit += 1.0
			continue
		}
		if best, ok := e.bestSimilarity(rec, liked); ok && best >= e.cfg.SimilarityThreshold {
			score.Credit += best
		}
	}
	return score
}

// bestSimilarity returns the highest collaborative similarity between rec
// and any liked item present in the similarity index.
func (e *Evaluator) bestSimilarity(rec string, liked []string) (float64, bool) {
	if e.collab == nil {
		return 0, false
	}
	ri, ok := e.collab.Index(rec)
	if !ok {
		return 0, false
	}

	found := false
	var best float64
	for _, l := range liked {
		li, ok := e.collab.Index(l)
		if !ok {
			continue
		}
		if sim := e.collab.At(ri, li); !found || sim > best {
			best = sim
			found = true
		}
	}
	return best, found
}

// Aggregate folds per-user scores into a method report.
//
// Exact precision averages hits/n over evaluated users. Similarity precision
// divides total credit by the total number of recommended slots of evaluated
// users. Coverage counts the distinct items recommended to all users
// (evaluated or not) against the scope size.
func (e *Evaluator) Aggregate(method recommend.Method, n int, lists []recommend.RecommendationList, scores []UserScore) recommend.MethodReport {
	report := recommend.MethodReport{
		Method:         method,
		N:              n,
		UsersRequested: len(lists),
	}

	var exactSum, credit float64
	for _, s := range scores {
		if !s.Evaluated {
			continue
		}
		report.UsersEvaluated++
		if n > 0 {
			exactSum += float64(s.Hits) / float64(n)
		}
		credit += s.Credit
		report.RecommendedSlots += s.Slots
	}
	if report.UsersEvaluated > 0 {
		report.ExactPrecision = exactSum / float64(report.UsersEvaluated)
	}
	if report.RecommendedSlots > 0 {
		report.SimilarityPrecision = credit / float64(report.RecommendedSlots)
	}

	unique := make(map[string]struct{})
	for i := range lists {
		for _, item := range lists[i].Items {
			unique[item] = struct{}{}
		}
	}
	report.UniqueItems = len(unique)
	if size := e.scope.Size(); size > 0 {
		report.Coverage = float64(report.UniqueItems) / float64(size)
	}

	return report
}

// Evaluate scores every list sequentially and aggregates the result.
func (e *Evaluator) Evaluate(method recommend.Method, n int, lists []recommend.RecommendationList) recommend.MethodReport {
	scores := make([]UserScore, len(lists))
	for i := range lists {
		scores[i] = e.ScoreUser(lists[i].UserID, lists[i].Items)
	}
	return e.Aggregate(method, n, lists, scores)
}
