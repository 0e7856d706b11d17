// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package algorithms

import (
	"fmt"
	"sort"

	"github.com/tomtom215/affinity/internal/recommend"
)

// Align restricts two similarity matrices to the items they share, both in
// ascending item ID order. An empty intersection is an alignment failure.
func Align(a, b *recommend.SimilarityMatrix) (*recommend.SimilarityMatrix, *recommend.SimilarityMatrix, error) {
	if a == nil || b == nil {
		return nil, nil, &recommend.AlignmentError{Reason: "missing similarity matrix"}
	}

	common := make([]string, 0, a.Size())
	for _, id := range a.Items() {
		if _, ok := b.Index(id); ok {
			common = append(common, id)
		}
	}
	if len(common) == 0 {
		return nil, nil, &recommend.AlignmentError{Left: a.Size(), Right: b.Size(), Reason: "no common items"}
	}
	sort.Strings(common)

	left, err := a.Subset(common)
	if err != nil {
		return nil, nil, &recommend.AlignmentError{Left: a.Size(), Right: b.Size(), Reason: err.Error()}
	}
	right, err := b.Subset(common)
	if err != nil {
		return nil, nil, &recommend.AlignmentError{Left: a.Size(), Right: b.Size(), Reason: err.Error()}
	}
	return left, right, nil
}

// Blend returns alpha*collab + beta*content. Both matrices must share the
// same item index (see Align) and the weights must sum to 1.
func Blend(collab, content *recommend.SimilarityMatrix, alpha, beta float64) (*recommend.SimilarityMatrix, error) {
	if err := (recommend.BlendConfig{Alpha: alpha, Beta: beta}).Validate(); err != nil {
		return nil, fmt.Errorf("invalid blend weights: %w", err)
	}
	if collab == nil || content == nil {
		return nil, &recommend.AlignmentError{Reason: "missing similarity matrix"}
	}
	if !collab.SameIndex(content) {
		return nil, &recommend.AlignmentError{
			Left:   collab.Size(),
			Right:  content.Size(),
			Reason: "item index mismatch",
		}
	}

	n := collab.Size()
	values := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = alpha*collab.At(i, j) + beta*content.At(i, j)
		}
		values[i] = row
	}

	return recommend.NewSimilarityMatrix(collab.Items(), values)
}
