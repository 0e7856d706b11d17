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

// Content computes item-item cosine similarity over attribute vectors.
//
// The feature vector of an item is:
//
//	[z-scored minutes] ++ one-hot(genre) ++ one-hot(language) ++ one-hot(extra...)
//
// Minutes are standardized with the population mean and standard deviation
// over the engine's items; zero variance scales every item to 0. A missing
// categorical value produces an all-zero segment rather than dropping the item.
type Content struct {
	items      []recommend.Item
	attributes []string
}

// NewContent creates a content engine over the given items. Duplicate IDs
// keep their first occurrence.
//
//nolint:gocritic // hugeParam: config passed by value for immutability
func NewContent(items []recommend.Item, cfg recommend.ContentConfig) *Content {
	seen := make(map[string]struct{}, len(items))
	unique := make([]recommend.Item, 0, len(items))
	for i := range items {
		if _, dup := seen[items[i].ID]; dup {
			continue
		}
		seen[items[i].ID] = struct{}{}
		unique = append(unique, items[i])
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].ID < unique[j].ID })

	attributes := []string{recommend.AttributeGenre, recommend.AttributeLanguage}
	for _, name := range cfg.ExtraAttributes {
		if name == recommend.AttributeGenre || name == recommend.AttributeLanguage {
			continue
		}
		attributes = append(attributes, name)
	}

	return &Content{items: unique, attributes: attributes}
}

// Name returns the engine identifier.
func (c *Content) Name() string {
	return "content"
}

// Compute returns the symmetric similarity matrix in ascending item ID order.
func (c *Content) Compute(ctx context.Context) (*recommend.SimilarityMatrix, error) {
	ids, vectors := c.vectors()
	return pairwiseCosine(ctx, ids, vectors)
}

// vectors builds the feature vector of every item.
func (c *Content) vectors() ([]string, [][]float64) {
	ids := make([]string, len(c.items))
	for i := range c.items {
		ids[i] = c.items[i].ID
	}

	scaled := c.scaledMinutes()

	// One vocabulary per attribute, each sorted so the layout is stable.
	vocabularies := make([]map[string]int, len(c.attributes))
	width := 1
	offsets := make([]int, len(c.attributes))
	for a, name := range c.attributes {
		values := make(map[string]struct{})
		for i := range c.items {
			if v, ok := c.items[i].Attribute(name); ok {
				values[v] = struct{}{}
			}
		}
		sorted := make([]string, 0, len(values))
		for v := range values {
			sorted = append(sorted, v)
		}
		sort.Strings(sorted)

		vocab := make(map[string]int, len(sorted))
		for k, v := range sorted {
			vocab[v] = k
		}
		vocabularies[a] = vocab
		offsets[a] = width
		width += len(sorted)
	}

	vectors := make([][]float64, len(c.items))
	for i := range c.items {
		vec := make([]float64, width)
		vec[0] = scaled[i]
		for a, name := range c.attributes {
			if v, ok := c.items[i].Attribute(name); ok {
				vec[offsets[a]+vocabularies[a][v]] = 1
			}
		}
		vectors[i] = vec
	}

	return ids, vectors
}

// scaledMinutes standardizes durations. Items without a finite duration
// are excluded from the statistics and scale to 0.
func (c *Content) scaledMinutes() []float64 {
	out := make([]float64, len(c.items))

	var sum float64
	var n int
	for i := range c.items {
		if m := c.items[i].Minutes; isFinite(m) {
			sum += m
			n++
		}
	}
	if n == 0 {
		return out
	}
	mean := sum / float64(n)

	var sq float64
	for i := range c.items {
		if m := c.items[i].Minutes; isFinite(m) {
			sq += (m - mean) * (m - mean)
		}
	}
	std := math.Sqrt(sq / float64(n))
	if std == 0 {
		return out
	}

	for i := range c.items {
		if m := c.items[i].Minutes; isFinite(m) {
			out[i] = (m - mean) / std
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
