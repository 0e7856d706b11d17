// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

// Query bounds.
const (
	MaxListSize        = 100
	MaxEvaluationN     = 50
	MaxEvaluationUsers = 1000
)

// RecommendationsRequest holds the validated parameters of
// GET /api/v1/recommendations/{userID}.
type RecommendationsRequest struct {
	UserID string `validate:"required,recid"`
	N      int    `validate:"min=1,max=100"`
	Method string `validate:"omitempty,oneof=hybrid collaborative content heuristic"`
}

// SimilarItemsRequest holds the validated parameters of
// GET /api/v1/items/{itemID}/similar. Heuristic has no similarity matrix,
// so it is not a valid kind.
type SimilarItemsRequest struct {
	ItemID string `validate:"required,recid"`
	K      int    `validate:"min=1,max=100"`
	Kind   string `validate:"omitempty,oneof=hybrid collaborative content"`
}

// EvaluationRequest holds the validated parameters of GET /api/v1/evaluation.
type EvaluationRequest struct {
	N        int    `validate:"min=1,max=50"`
	Strategy string `validate:"omitempty,oneof=top stratified"`
	Users    int    `validate:"min=1,max=1000"`
}
