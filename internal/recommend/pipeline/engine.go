// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/algorithms"
)

// Build stage names.
const (
	StageMatrix        = "matrix"
	StageScope         = "scope"
	StageCollaborative = "collaborative"
	StageContent       = "content"
	StageBlend         = "blend"
	StageFallback      = "fallback"
)

// Engine builds runs from snapshots.
type Engine struct {
	cfg    *recommend.Config
	logger zerolog.Logger
}

// NewEngine validates cfg and creates an engine. The configuration is copied.
func NewEngine(cfg *recommend.Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	return &Engine{
		cfg:    cfg.Clone(),
		logger: logger.With().Str("component", "pipeline").Logger(),
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *recommend.Config {
	return e.cfg.Clone()
}

// Build computes a run from a snapshot. Structural failures are returned as
// *recommend.EmptyMatrixError or *recommend.AlignmentError wrapped with the
// failing stage.
func (e *Engine) Build(ctx context.Context, snap *recommend.Snapshot) (*Run, error) {
	start := time.Now()
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: start,
		cfg:       e.cfg,
		snapshot:  snap,
		workers:   e.workers(),
	}
	run.logger = e.logger.With().Str("run_id", run.ID).Logger()

	err := e.build(ctx, run)
	result := buildResult(err)
	metrics.RecordPipelineRun(result, time.Since(start))
	if err != nil {
		run.logger.Error().Err(err).Str("result", result).Msg("Run build failed")
		return nil, err
	}

	run.Stats.Duration = time.Since(start)
	metrics.RecordMatrixShape(run.scoped.NumUsers(), run.scoped.NumItems(), run.scope.Size())

	run.logger.Info().
		Int("events", run.Stats.Build.RawEvents).
		Int("users", run.scoped.NumUsers()).
		Int("scope_items", run.scope.Size()).
		Int("affinity_items", run.collab.Size()).
		Str("publisher", run.scope.PublisherID).
		Dur("duration", run.Stats.Duration).
		Msg("Run built")

	return run, nil
}

func (e *Engine) build(ctx context.Context, run *Run) error {
	snap := run.snapshot

	// 1. engagement matrix
	err := run.stage(StageMatrix, func() error {
		matrix, stats, err := algorithms.BuildEngagementMatrix(snap.Events, snap.ItemMap(), e.cfg.Engagement)
		run.Stats.Build = stats
		metrics.RecordDroppedRecords("duplicate", stats.RawEvents-stats.Pairs)
		metrics.RecordDroppedRecords("missing_duration", stats.MissingDuration)
		metrics.RecordDroppedRecords("low_engagement", stats.LowEngagement)
		if err != nil {
			return err
		}
		run.matrix = matrix
		return nil
	})
	if err != nil {
		return err
	}

	// 2. scope
	err = run.stage(StageScope, func() error {
		scope, err := algorithms.DeriveScope(snap.Subscriptions, run.matrix)
		if err != nil {
			return err
		}
		run.scope = scope
		run.scoped = run.matrix.Restrict(scope.SubscriberSet(), scope.ItemSet())
		if run.scoped.NumItems() == 0 {
			return &recommend.EmptyMatrixError{Stage: StageScope, Events: len(snap.Events)}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 3. collaborative similarity
	var collab *recommend.SimilarityMatrix
	err = run.stage(StageCollaborative, func() error {
		var err error
		collab, err = algorithms.NewCollaborative(run.scoped).Compute(ctx)
		return err
	})
	if err != nil {
		return err
	}
	run.collabFull = collab

	// 4. content similarity over scope items known to the item table
	var content *recommend.SimilarityMatrix
	err = run.stage(StageContent, func() error {
		items := make([]recommend.Item, 0, run.scope.Size())
		for _, id := range run.scope.Items() {
			if item, ok := snap.Item(id); ok {
				items = append(items, item)
			}
		}
		var err error
		content, err = algorithms.NewContent(items, e.cfg.Content).Compute(ctx)
		return err
	})
	if err != nil {
		return err
	}

	// 5. align and blend
	err = run.stage(StageBlend, func() error {
		left, right, err := algorithms.Align(collab, content)
		if err != nil {
			return err
		}
		run.collab, run.content = left, right

		run.affinity = make(map[recommend.Method]*recommend.SimilarityMatrix, 3)
		run.generators = make(map[recommend.Method]*algorithms.Generator, 3)
		for _, m := range recommend.AllMethods {
			if !m.Personalized() {
				continue
			}
			alpha, beta := m.Weights(e.cfg.Blend)
			affinity, err := algorithms.Blend(left, right, alpha, beta)
			if err != nil {
				return fmt.Errorf("%s: %w", m, err)
			}
			run.affinity[m] = affinity
			run.generators[m] = algorithms.NewGenerator(affinity, run.scoped)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 6. fallback rankings and evaluator
	return run.stage(StageFallback, func() error {
		run.fallback = algorithms.NewFallbackPolicy(e.cfg.Fallback, snap, run.scope)
		run.evaluator = algorithms.NewEvaluator(e.cfg.Evaluation, run.scoped, run.scope, run.collabFull)
		return nil
	})
}

func (e *Engine) workers() int {
	if e.cfg.Workers > 0 {
		return e.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// buildResult maps a build error to the run result metric label.
func buildResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, recommend.ErrEmptyMatrix):
		return "empty_matrix"
	case errors.Is(err, recommend.ErrAlignment):
		return "alignment"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
