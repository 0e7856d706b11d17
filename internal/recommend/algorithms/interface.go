// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package algorithms

import (
	"context"
	"math"
	"sort"

	"github.com/tomtom215/affinity/internal/recommend"
)

// SimilarityEngine computes an item-item similarity matrix over its inputs.
// The returned matrix must be symmetric and indexed in ascending item ID
// order. Implementations may use dense or indexed strategies.
type SimilarityEngine interface {
	Name() string
	Compute(ctx context.Context) (*recommend.SimilarityMatrix, error)
}

// Ensure engines implement the interface.
var (
	_ SimilarityEngine = (*Collaborative)(nil)
	_ SimilarityEngine = (*Content)(nil)
)

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// cosineSimilarity computes cosine similarity between two vectors.
// A zero vector is dissimilar to everything.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// pairwiseCosine fills a symmetric matrix from per-item vectors. Only the
// upper triangle is computed; the lower one is mirrored.
func pairwiseCosine(ctx context.Context, items []string, vectors [][]float64) (*recommend.SimilarityMatrix, error) {
	n := len(items)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		for j := i; j < n; j++ {
			sim := cosineSimilarity(vectors[i], vectors[j])
			values[i][j] = sim
			values[j][i] = sim
		}
	}

	return recommend.NewSimilarityMatrix(items, values)
}

// ranked is a scored ID used by every ranking in this package.
type ranked struct {
	id    string
	score float64
}

// sortRanked orders by score descending, then ID ascending.
func sortRanked(r []ranked) {
	sort.Slice(r, func(i, j int) bool {
		if r[i].score != r[j].score {
			return r[i].score > r[j].score
		}
		return r[i].id < r[j].id
	})
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
