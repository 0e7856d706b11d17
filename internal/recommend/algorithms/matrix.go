// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package algorithms

import (
	"math"

	"github.com/tomtom215/affinity/internal/recommend"
)

// BuildStats reports how many events each matrix construction step consumed.
type BuildStats struct {
	RawEvents       int `json:"raw_events"`
	Pairs           int `json:"pairs"`
	MissingDuration int `json:"missing_duration"`
	LowEngagement   int `json:"low_engagement"`
	Kept            int `json:"kept"`
	Users           int `json:"users"`
	Items           int `json:"items"`
}

type pairKey struct {
	user string
	item string
}

// BuildEngagementMatrix converts raw events into the deduplicated, filtered
// engagement matrix.
//
// For every (user, item) pair the event with the most seconds viewed is
// retained; ties keep the first event in input order. The score is the
// watched fraction of the item clipped to [0, 1]. Pairs whose item has no
// usable duration are dropped. A record is kept if its score reaches
// th.MinFraction or its raw seconds reach th.MinSeconds.
//
// Returns *recommend.EmptyMatrixError when nothing survives.
//
//nolint:gocritic // hugeParam: thresholds are passed by value as immutable config
func BuildEngagementMatrix(
	events []recommend.InteractionEvent,
	items map[string]recommend.Item,
	th recommend.EngagementThresholds,
) (*recommend.EngagementMatrix, BuildStats, error) {
	stats := BuildStats{RawEvents: len(events)}

	best := make(map[pairKey]int, len(events))
	order := make([]pairKey, 0, len(events))
	for i := range events {
		key := pairKey{user: events[i].UserID, item: events[i].ItemID}
		prev, ok := best[key]
		if !ok {
			best[key] = i
			order = append(order, key)
			continue
		}
		if events[i].SecondsViewed > events[prev].SecondsViewed {
			best[key] = i
		}
	}
	stats.Pairs = len(order)

	records := make([]recommend.EngagementRecord, 0, len(order))
	for _, key := range order {
		ev := events[best[key]]

		item, ok := items[key.item]
		if !ok || !usableDuration(item.Minutes) {
			stats.MissingDuration++
			continue
		}

		score := clip01(ev.SecondsViewed / (item.Minutes * 60))
		if score < th.MinFraction && ev.SecondsViewed < th.MinSeconds {
			stats.LowEngagement++
			continue
		}

		records = append(records, recommend.EngagementRecord{
			UserID:        key.user,
			ItemID:        key.item,
			SecondsViewed: ev.SecondsViewed,
			Score:         score,
		})
	}
	stats.Kept = len(records)

	matrix := recommend.NewEngagementMatrix(records)
	stats.Users = matrix.NumUsers()
	stats.Items = matrix.NumItems()

	if matrix.NumItems() == 0 {
		return nil, stats, &recommend.EmptyMatrixError{Stage: "filter", Events: len(events)}
	}

	return matrix, stats, nil
}

func usableDuration(minutes float64) bool {
	return minutes > 0 && !math.IsInf(minutes, 0)
}

func clip01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
