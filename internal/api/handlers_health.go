// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/affinity/internal/models"
)

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, whether or not a run is loaded.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: statusSuccess,
		Data:   h.health(),
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles readiness probe requests.
// Returns 503 until the first run has been built.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	health := h.health()
	status := http.StatusOK
	if !health.Ready {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, &models.APIResponse{
		Status: statusSuccess,
		Data:   health,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			RunID:     health.RunID,
		},
	})
}

func (h *Handler) health() models.HealthResponse {
	health := models.HealthResponse{
		Status:  "healthy",
		Uptime:  time.Since(h.startTime).Seconds(),
		Version: h.cfg.Version,
	}
	if run := h.runs.Load(); run != nil {
		health.Ready = true
		health.RunID = run.ID
	} else {
		health.Status = "starting"
	}
	return health
}
