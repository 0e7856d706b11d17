// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"time"

	"github.com/tomtom215/affinity/internal/cache"
	"github.com/tomtom215/affinity/internal/models"
	"github.com/tomtom215/affinity/internal/recommend/pipeline"
)

// RunSource yields the run to serve. Load returns nil until the first build
// succeeds. *pipeline.Holder implements it.
type RunSource interface {
	Load() *pipeline.Run
}

// HandlerConfig holds request defaults.
type HandlerConfig struct {
	// Version is reported by the health endpoints.
	Version string

	// DefaultN is the list size when ?n= is absent.
	DefaultN int

	// DefaultK is the neighbour count when ?k= is absent.
	DefaultK int

	// DefaultStrategy and DefaultUsers configure /evaluation.
	DefaultStrategy string
	DefaultUsers    int

	// EvaluationTimeout bounds one /evaluation request.
	EvaluationTimeout time.Duration

	// EvaluationCacheSize and EvaluationCacheTTL bound the memoized
	// /evaluation responses.
	EvaluationCacheSize int
	EvaluationCacheTTL  time.Duration
}

// DefaultHandlerConfig returns the defaults used when no configuration is given.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		Version:             "dev",
		DefaultN:            3,
		DefaultK:            10,
		DefaultStrategy:     "stratified",
		DefaultUsers:        30,
		EvaluationTimeout:   30 * time.Second,
		EvaluationCacheSize: 64,
		EvaluationCacheTTL:  10 * time.Minute,
	}
}

// Handler serves the query API.
type Handler struct {
	runs      RunSource
	cfg       HandlerConfig
	startTime time.Time

	// evaluations is keyed by run ID and query, so a new run never sees
	// results computed against the previous one.
	evaluations *cache.LRU[models.EvaluationResponse]
}

// NewHandler creates a handler reading runs from src.
//
//nolint:gocritic // hugeParam: config passed by value for immutability
func NewHandler(src RunSource, cfg HandlerConfig) *Handler {
	defaults := DefaultHandlerConfig()
	if cfg.DefaultN <= 0 {
		cfg.DefaultN = defaults.DefaultN
	}
	if cfg.DefaultK <= 0 {
		cfg.DefaultK = defaults.DefaultK
	}
	if cfg.DefaultStrategy == "" {
		cfg.DefaultStrategy = defaults.DefaultStrategy
	}
	if cfg.DefaultUsers <= 0 {
		cfg.DefaultUsers = defaults.DefaultUsers
	}
	if cfg.EvaluationTimeout <= 0 {
		cfg.EvaluationTimeout = defaults.EvaluationTimeout
	}
	return &Handler{
		runs:        src,
		cfg:         cfg,
		startTime:   time.Now(),
		evaluations: cache.NewLRU[models.EvaluationResponse](cfg.EvaluationCacheSize, cfg.EvaluationCacheTTL),
	}
}
