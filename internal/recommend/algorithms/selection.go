// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package algorithms

import (
	"fmt"
	"strings"

	"github.com/tomtom215/affinity/internal/recommend"
)

// SelectionStrategy picks the users an evaluation runs over.
type SelectionStrategy string

const (
	// SelectTop takes the most active users.
	SelectTop SelectionStrategy = "top"

	// SelectStratified mixes activity tiers and tops up from the most active.
	SelectStratified SelectionStrategy = "stratified"
)

// DefaultEvaluationUsers is the cohort size used when none is requested.
const DefaultEvaluationUsers = 30

// ActivityTier is an activity range [Min, Max) with a per-tier quota.
// Exclusive bounds are expressed with the flags.
type ActivityTier struct {
	Name         string
	Min          float64
	Max          float64
	MinExclusive bool
	MaxInclusive bool
	Quota        int
}

// Contains reports whether an activity value falls in the tier.
//
//nolint:gocritic // hugeParam: small value type
func (t ActivityTier) Contains(activity float64) bool {
	if t.MinExclusive {
		if activity <= t.Min {
			return false
		}
	} else if activity < t.Min {
		return false
	}
	if t.Max <= 0 {
		return true
	}
	if t.MaxInclusive {
		return activity <= t.Max
	}
	return activity < t.Max
}

// StratifiedTiers are the activity tiers of the stratified cohort: highly
// active (> 15), moderately active [5, 15] and lightly active [2, 5).
var StratifiedTiers = []ActivityTier{
	{Name: "high", Min: 15, MinExclusive: true, Quota: 10},
	{Name: "moderate", Min: 5, Max: 15, MaxInclusive: true, Quota: 10},
	{Name: "light", Min: 2, Max: 5, Quota: 10},
}

// ParseSelectionStrategy converts a strategy name. An empty name selects
// SelectTop.
func ParseSelectionStrategy(s string) (SelectionStrategy, error) {
	switch SelectionStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", SelectTop:
		return SelectTop, nil
	case SelectStratified:
		return SelectStratified, nil
	default:
		return "", fmt.Errorf("unknown selection strategy %q", s)
	}
}

// SelectUsers returns up to count users of the matrix ranked by activity
// (sum of engagement scores, ties by ascending ID). The stratified strategy
// fills each tier quota first, then tops up from the most active remaining.
func SelectUsers(matrix *recommend.EngagementMatrix, strategy SelectionStrategy, count int) []string {
	if count <= 0 {
		return nil
	}

	active := make([]ranked, 0, matrix.NumUsers())
	for _, u := range matrix.Users() {
		active = append(active, ranked{id: u, score: matrix.Activity(u)})
	}
	sortRanked(active)

	selected := make([]string, 0, count)
	chosen := make(map[string]struct{}, count)
	add := func(id string) {
		if len(selected) >= count {
			return
		}
		if _, dup := chosen[id]; dup {
			return
		}
		chosen[id] = struct{}{}
		selected = append(selected, id)
	}

	if strategy == SelectStratified {
		for _, tier := range StratifiedTiers {
			taken := 0
			for _, r := range active {
				if taken >= tier.Quota {
					break
				}
				if tier.Contains(r.score) {
					add(r.id)
					taken++
				}
			}
		}
	}

	for _, r := range active {
		add(r.id)
	}
	return selected
}
