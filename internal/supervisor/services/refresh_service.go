// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/recommend/pipeline"
)

// RunBuilder builds a fresh recommendation run. Satisfied by
// *pipeline.Refresher.
type RunBuilder interface {
	BuildRun(ctx context.Context) (*pipeline.Run, error)
}

// RunStore publishes built runs. Satisfied by *pipeline.Holder.
type RunStore interface {
	Store(run *pipeline.Run) *pipeline.Run
}

// RefreshServiceConfig controls when runs are rebuilt.
type RefreshServiceConfig struct {
	// OnStartup builds a run as soon as the service starts.
	OnStartup bool

	// Interval between scheduled rebuilds. Zero or negative disables them;
	// rebuilds then only happen through Trigger.
	Interval time.Duration

	// Timeout bounds a single rebuild. Default: 10 minutes
	Timeout time.Duration

	// OnBuilt, if set, is called with each successfully published run.
	OnBuilt func(*pipeline.Run)
}

// RefreshService rebuilds the recommendation run under supervision.
// A failed rebuild leaves the previously published run in place.
type RefreshService struct {
	builder RunBuilder
	store   RunStore
	config  RefreshServiceConfig
	trigger chan struct{}
	logger  zerolog.Logger
	name    string
}

// NewRefreshService creates a refresh service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRefreshService(builder RunBuilder, store RunStore, cfg RefreshServiceConfig, logger zerolog.Logger) *RefreshService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &RefreshService{
		builder: builder,
		store:   store,
		config:  cfg,
		trigger: make(chan struct{}, 1),
		logger:  logger.With().Str("service", "refresh").Logger(),
		name:    "refresh-service",
	}
}

// Trigger requests a rebuild. Requests made while one is already pending
// are coalesced. Never blocks.
func (s *RefreshService) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Serve implements suture.Service.
func (s *RefreshService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("interval", s.config.Interval).
		Msg("Refresh service starting")

	if s.config.OnStartup {
		s.refresh(ctx, "startup")
	}

	// A nil channel never fires, which disables the schedule.
	var tick <-chan time.Time
	if s.config.Interval > 0 {
		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Refresh service shutting down")
			return ctx.Err()
		case <-tick:
			s.refresh(ctx, "schedule")
		case <-s.trigger:
			s.refresh(ctx, "trigger")
		}
	}
}

// Refresh rebuilds immediately and reports whether a new run was published.
func (s *RefreshService) Refresh(ctx context.Context) bool {
	return s.refresh(ctx, "manual")
}

func (s *RefreshService) refresh(ctx context.Context, reason string) bool {
	buildCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	run, err := s.builder.BuildRun(buildCtx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Str("reason", reason).Msg("Rebuild failed, keeping previous run")
		}
		return false
	}

	prev := s.store.Store(run)
	ev := s.logger.Info().
		Str("reason", reason).
		Str("run_id", run.ID).
		Dur("duration", time.Since(start))
	if prev != nil {
		ev = ev.Str("previous_run_id", prev.ID)
	}
	ev.Msg("Run published")

	if s.config.OnBuilt != nil {
		s.config.OnBuilt(run)
	}
	return true
}

// String returns the service name for logging.
func (s *RefreshService) String() string {
	return s.name
}
