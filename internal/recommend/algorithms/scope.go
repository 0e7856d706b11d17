// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package algorithms

import (
	"github.com/tomtom215/affinity/internal/recommend"
)

// DeriveScope picks the publisher with the most distinct subscribers (ties go
// to the smallest publisher ID) and returns the items of the engagement
// matrix viewed by its subscribers.
//
// Returns *recommend.EmptyMatrixError with stage "scope" when no publisher
// exists or its subscribers have no engagement records.
func DeriveScope(subs []recommend.Subscription, matrix *recommend.EngagementMatrix) (*recommend.ContentScope, error) {
	subscribers := make(map[string]map[string]struct{})
	for _, s := range subs {
		set, ok := subscribers[s.PublisherID]
		if !ok {
			set = make(map[string]struct{})
			subscribers[s.PublisherID] = set
		}
		set[s.UserID] = struct{}{}
	}

	var publisher string
	best := -1
	for id, set := range subscribers {
		if len(set) > best || (len(set) == best && id < publisher) {
			publisher = id
			best = len(set)
		}
	}
	if best < 0 {
		return nil, &recommend.EmptyMatrixError{Stage: "scope"}
	}

	items := make(map[string]struct{})
	records := 0
	for u := range subscribers[publisher] {
		row, ok := matrix.Row(u)
		if !ok {
			continue
		}
		for item := range row {
			items[item] = struct{}{}
			records++
		}
	}
	if len(items) == 0 {
		return nil, &recommend.EmptyMatrixError{Stage: "scope", Events: records}
	}

	return recommend.NewContentScope(publisher, subscribers[publisher], items), nil
}
