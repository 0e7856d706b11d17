// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package algorithms

import (
	"math"
	"sort"

	"github.com/tomtom215/affinity/internal/recommend"
)

// Generator ranks unseen items for a user by engagement-weighted affinity:
//
//	score(j) = Σ_{i ∈ seen(u)} w(u,i) · affinity(i, j)
//
// Seen items are never candidates. Ties break by ascending item ID.
type Generator struct {
	affinity *recommend.SimilarityMatrix
	matrix   *recommend.EngagementMatrix
}

// NewGenerator creates a generator over an affinity matrix and the
// engagement matrix that supplies the per-user weights.
func NewGenerator(affinity *recommend.SimilarityMatrix, matrix *recommend.EngagementMatrix) *Generator {
	return &Generator{affinity: affinity, matrix: matrix}
}

// Seen returns the items the user has engaged with.
func (g *Generator) Seen(userID string) map[string]struct{} {
	row, ok := g.matrix.Row(userID)
	if !ok {
		return map[string]struct{}{}
	}
	seen := make(map[string]struct{}, len(row))
	for item := range row {
		seen[item] = struct{}{}
	}
	return seen
}

// Recommend returns at most n unseen items. The list is empty when the user
// is unknown or has no seen items in the affinity universe, and shorter than
// n when fewer finite-score candidates exist.
func (g *Generator) Recommend(userID string, n int) recommend.RecommendationList {
	list := recommend.RecommendationList{UserID: userID, Source: recommend.SourceNone}
	if n <= 0 {
		return list
	}

	candidates := g.score(userID)
	if len(candidates) == 0 {
		return list
	}

	sortRanked(candidates)
	if len(candidates) > n {
		candidates = candidates[:n]
	}

	list.Items = make([]string, len(candidates))
	list.Scores = make([]float64, len(candidates))
	for i, c := range candidates {
		list.Items[i] = c.id
		list.Scores[i] = c.score
	}
	list.Source = recommend.SourcePersonalized
	return list
}

// score returns every finite-score unseen candidate.
func (g *Generator) score(userID string) []ranked {
	row, ok := g.matrix.Row(userID)
	if !ok || len(row) == 0 {
		return nil
	}

	type weighted struct {
		index  int
		weight float64
	}
	seen := make([]weighted, 0, len(row))
	for item, w := range row {
		if idx, ok := g.affinity.Index(item); ok {
			seen = append(seen, weighted{index: idx, weight: w})
		}
	}
	if len(seen) == 0 {
		return nil
	}
	// Fixed summation order keeps scores bit-identical across runs.
	sort.Slice(seen, func(a, b int) bool { return seen[a].index < seen[b].index })

	items := g.affinity.Items()
	out := make([]ranked, 0, len(items))
	for j, id := range items {
		if _, isSeen := row[id]; isSeen {
			continue
		}
		var total float64
		for _, s := range seen {
			total += s.weight * g.affinity.At(s.index, j)
		}
		if math.IsNaN(total) || math.IsInf(total, 0) {
			continue
		}
		out = append(out, ranked{id: id, score: total})
	}
	return out
}
