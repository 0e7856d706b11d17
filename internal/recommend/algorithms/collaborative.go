// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package algorithms

import (
	"context"

	"github.com/tomtom215/affinity/internal/recommend"
)

// Collaborative computes item-item cosine similarity over the columns of an
// engagement matrix. Each item vector has one entry per user; unlisted pairs
// contribute zero.
//
// The computation is dense, O(items² · users). Scoped catalogs hold tens of
// items, so no neighbour index is needed.
type Collaborative struct {
	matrix *recommend.EngagementMatrix
}

// NewCollaborative creates a collaborative engine over the given matrix.
// The matrix should already be restricted to the content scope.
func NewCollaborative(matrix *recommend.EngagementMatrix) *Collaborative {
	return &Collaborative{matrix: matrix}
}

// Name returns the engine identifier.
func (c *Collaborative) Name() string {
	return "collaborative"
}

// Compute returns the symmetric similarity matrix, indexed like the
// engagement matrix item axis.
func (c *Collaborative) Compute(ctx context.Context) (*recommend.SimilarityMatrix, error) {
	items := c.matrix.Items()
	columns := make([][]float64, len(items))
	for i, id := range items {
		columns[i] = c.matrix.Column(id)
	}
	return pairwiseCosine(ctx, items, columns)
}
