// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/models"
	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/algorithms"
	"github.com/tomtom215/affinity/internal/recommend/pipeline"
)

// currentRun returns the served run or writes a 503.
func (h *Handler) currentRun(w http.ResponseWriter) *pipeline.Run {
	run := h.runs.Load()
	if run == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeNotReady, "No recommendation run has been built yet", nil)
	}
	return run
}

// Recommendations handles GET /api/v1/recommendations/{userID}.
// Unknown users are not an error: they receive the fallback list.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := RecommendationsRequest{
		UserID: chi.URLParam(r, "userID"),
		N:      getIntParam(r, "n", h.cfg.DefaultN),
		Method: r.URL.Query().Get("method"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	method, err := recommend.ParseMethod(req.Method)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	run := h.currentRun(w)
	if run == nil {
		return
	}

	list := run.Recommend(req.UserID, req.N, method)

	logging.Ctx(r.Context()).Debug().
		Str("user_id", req.UserID).
		Str("method", method.String()).
		Str("source", string(list.Source)).
		Int("items", list.Len()).
		Msg("Served recommendations")

	respondSuccess(w, models.RecommendationResponse{
		UserID: req.UserID,
		Method: method,
		N:      req.N,
		Source: list.Source,
		Items:  models.RankItems(list.Items, list.Scores),
	}, run.ID, start)
}

// SimilarItems handles GET /api/v1/items/{itemID}/similar.
func (h *Handler) SimilarItems(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := SimilarItemsRequest{
		ItemID: chi.URLParam(r, "itemID"),
		K:      getIntParam(r, "k", h.cfg.DefaultK),
		Kind:   r.URL.Query().Get("kind"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	kind, err := recommend.ParseMethod(req.Kind)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	run := h.currentRun(w)
	if run == nil {
		return
	}

	neighbors, err := run.SimilarItems(req.ItemID, req.K, kind)
	switch {
	case errors.Is(err, pipeline.ErrUnknownItem):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Item is not in the recommendation scope", nil)
		return
	case errors.Is(err, recommend.ErrUnknownMethod):
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to rank similar items", err)
		return
	}

	ranked := make([]models.RankedItem, len(neighbors))
	for i, n := range neighbors {
		ranked[i] = models.RankedItem{Rank: i + 1, ItemID: n.ItemID, Score: n.Similarity}
	}

	respondSuccess(w, models.SimilarItemsResponse{
		ItemID:    req.ItemID,
		Kind:      kind.String(),
		Neighbors: ranked,
	}, run.ID, start)
}

// Scope handles GET /api/v1/scope.
func (h *Handler) Scope(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	run := h.currentRun(w)
	if run == nil {
		return
	}

	s := run.Summary()
	respondSuccess(w, models.ScopeResponse{
		RunID:           s.RunID,
		BuiltAt:         s.StartedAt,
		PublisherID:     s.PublisherID,
		SubscriberCount: s.SubscriberCount,
		ScopeItems:      s.ScopeItems,
		MatrixUsers:     s.MatrixUsers,
		MatrixItems:     s.MatrixItems,
		AffinityItems:   s.AffinityItems,
	}, run.ID, start)
}

// Evaluation handles GET /api/v1/evaluation. It selects a cohort from the
// current run and compares every method on it.
func (h *Handler) Evaluation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := EvaluationRequest{
		N:        getIntParam(r, "n", h.cfg.DefaultN),
		Strategy: r.URL.Query().Get("strategy"),
		Users:    getIntParam(r, "users", h.cfg.DefaultUsers),
	}
	if req.Strategy == "" {
		req.Strategy = h.cfg.DefaultStrategy
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	strategy, err := algorithms.ParseSelectionStrategy(req.Strategy)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	run := h.currentRun(w)
	if run == nil {
		return
	}

	key := fmt.Sprintf("%s|%d|%s|%d", run.ID, req.N, strategy, req.Users)
	if resp, ok := h.evaluations.Get(key); ok {
		respondSuccess(w, resp, run.ID, start)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.EvaluationTimeout)
	defer cancel()

	users := run.SelectUsers(strategy, req.Users)
	reports, err := run.Compare(ctx, req.N, users)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Evaluation failed", err)
		return
	}

	resp := models.EvaluationResponse{
		N:        req.N,
		Strategy: string(strategy),
		Users:    users,
		Reports:  reports,
	}
	h.evaluations.Add(key, resp)
	respondSuccess(w, resp, run.ID, start)
}

// NotFound answers unmatched routes with the error envelope.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
}

// MethodNotAllowed answers known routes called with the wrong verb.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, ErrCodeBadMethod, "Method not allowed", nil)
}
