// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package models

import (
	"time"

	"github.com/tomtom215/affinity/internal/recommend"
)

// RankedItem is one entry of a ranked list. Rank is 1-based.
type RankedItem struct {
	Rank   int     `json:"rank"`
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}

// RankItems pairs items with scores in list order.
func RankItems(items []string, scores []float64) []RankedItem {
	out := make([]RankedItem, len(items))
	for i, id := range items {
		out[i] = RankedItem{Rank: i + 1, ItemID: id}
		if i < len(scores) {
			out[i].Score = scores[i]
		}
	}
	return out
}

// RecommendationResponse is the body of GET /api/v1/recommendations/{userID}.
type RecommendationResponse struct {
	UserID string                         `json:"user_id"`
	Method recommend.Method               `json:"method"`
	N      int                            `json:"n"`
	Source recommend.RecommendationSource `json:"source"`
	Items  []RankedItem                   `json:"items"`
}

// SimilarItemsResponse is the body of GET /api/v1/items/{itemID}/similar.
type SimilarItemsResponse struct {
	ItemID    string       `json:"item_id"`
	Kind      string       `json:"kind"`
	Neighbors []RankedItem `json:"neighbors"`
}

// ScopeResponse describes the loaded run.
type ScopeResponse struct {
	RunID           string    `json:"run_id"`
	BuiltAt         time.Time `json:"built_at"`
	PublisherID     string    `json:"publisher_id"`
	SubscriberCount int       `json:"subscriber_count"`
	ScopeItems      int       `json:"scope_items"`
	MatrixUsers     int       `json:"matrix_users"`
	MatrixItems     int       `json:"matrix_items"`
	AffinityItems   int       `json:"affinity_items"`
}

// EvaluationResponse is the body of GET /api/v1/evaluation.
type EvaluationResponse struct {
	N        int                      `json:"n"`
	Strategy string                   `json:"strategy"`
	Users    []string                 `json:"users"`
	Reports  []recommend.MethodReport `json:"reports"`
}

// HealthResponse is the body of the health endpoints.
type HealthResponse struct {
	Status  string  `json:"status"`
	Ready   bool    `json:"ready"`
	RunID   string  `json:"run_id,omitempty"`
	Uptime  float64 `json:"uptime_seconds"`
	Version string  `json:"version,omitempty"`
}
