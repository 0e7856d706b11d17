// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"fmt"
	"math"
)

// SimilarityMatrix is a dense, square item x item matrix indexed by item ID.
// Engines produce symmetric matrices; the diagonal is never consulted.
type SimilarityMatrix struct {
	items  []string
	index  map[string]int
	values [][]float64
}

// NewSimilarityMatrix wraps a square value grid. items gives the ID of each
// row/column and must not contain duplicates.
func NewSimilarityMatrix(items []string, values [][]float64) (*SimilarityMatrix, error) {
	if len(values) != len(items) {
		return nil, fmt.Errorf("similarity matrix has %d rows for %d items", len(values), len(items))
	}
	index := make(map[string]int, len(items))
	for i, id := range items {
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("duplicate item %q in similarity index", id)
		}
		if len(values[i]) != len(items) {
			return nil, fmt.Errorf("similarity row %d has %d columns, want %d", i, len(values[i]), len(items))
		}
		index[id] = i
	}
	return &SimilarityMatrix{items: items, index: index, values: values}, nil
}

// Items returns the item IDs in index order.
func (s *SimilarityMatrix) Items() []string {
	return s.items
}

// Size returns the number of items.
func (s *SimilarityMatrix) Size() int {
	return len(s.items)
}

// Index returns the row/column position of an item.
func (s *SimilarityMatrix) Index(itemID string) (int, bool) {
	i, ok := s.index[itemID]
	return i, ok
}

// At returns the value at positions (i, j).
func (s *SimilarityMatrix) At(i, j int) float64 {
	return s.values[i][j]
}

// Row returns the similarity row at position i. It must not be modified.
func (s *SimilarityMatrix) Row(i int) []float64 {
	return s.values[i]
}

// Lookup returns sim(a, b) by item ID.
func (s *SimilarityMatrix) Lookup(a, b string) (float64, bool) {
	i, ok := s.index[a]
	if !ok {
		return 0, false
	}
	j, ok := s.index[b]
	if !ok {
		return 0, false
	}
	return s.values[i][j], true
}

// SameIndex reports whether two matrices share the same item order.
func (s *SimilarityMatrix) SameIndex(o *SimilarityMatrix) bool {
	if len(s.items) != len(o.items) {
		return false
	}
	for i := range s.items {
		if s.items[i] != o.items[i] {
			return false
		}
	}
	return true
}

// Subset returns a new matrix over the given items in the given order.
// Every item must exist in s.
func (s *SimilarityMatrix) Subset(items []string) (*SimilarityMatrix, error) {
	pos := make([]int, len(items))
	for k, id := range items {
		i, ok := s.index[id]
		if !ok {
			return nil, fmt.Errorf("item %q not in similarity index", id)
		}
		pos[k] = i
	}
	values := make([][]float64, len(items))
	for a := range items {
		values[a] = make([]float64, len(items))
		for b := range items {
			values[a][b] = s.values[pos[a]][pos[b]]
		}
	}
	return NewSimilarityMatrix(append([]string(nil), items...), values)
}

// IsSymmetric reports whether sim(i,j) and sim(j,i) agree within tol.
func (s *SimilarityMatrix) IsSymmetric(tol float64) bool {
	for i := range s.values {
		for j := i + 1; j < len(s.values); j++ {
			if math.Abs(s.values[i][j]-s.values[j][i]) > tol {
				return false
			}
		}
	}
	return true
}
