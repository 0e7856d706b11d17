// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/export"
	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/algorithms"
	"github.com/tomtom215/affinity/internal/recommend/pipeline"
)

// exportRun writes the hybrid recommendation lists and, when evaluation is
// enabled, the method comparison report for a run.
func exportRun(ctx context.Context, cfg *config.Config, run *pipeline.Run) error {
	n := cfg.Recommend.N
	logger := logging.With().Str("run_id", run.ID).Logger()

	if path := cfg.Output.RecommendationsPath(); path != "" {
		users := exportUsers(run.Snapshot())
		lists, err := run.RecommendAll(ctx, users, n, recommend.MethodHybrid)
		if err != nil {
			return fmt.Errorf("recommend: %w", err)
		}
		if err := export.RecommendationsFile(path, lists, n); err != nil {
			return err
		}
		logger.Info().Str("path", path).Int("users", len(lists)).Msg("Recommendations exported")
	}

	if !cfg.Evaluation.Enabled {
		return nil
	}

	strategy, err := algorithms.ParseSelectionStrategy(cfg.Evaluation.Strategy)
	if err != nil {
		return err
	}
	users := run.SelectUsers(strategy, cfg.Evaluation.Users)
	reports, err := run.Compare(ctx, n, users)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	if path := cfg.Output.ReportPath(); path != "" {
		report := export.NewReport(run, n, string(strategy), users, reports)
		if err := export.ReportFile(path, report); err != nil {
			return err
		}
		logger.Info().Str("path", path).Int("users", len(users)).Msg("Evaluation report exported")
	}
	return nil
}

// exportUsers lists the users to export: the user table in its own order,
// or every user with a view event when the table is empty.
func exportUsers(snap *recommend.Snapshot) []string {
	seen := make(map[string]struct{})
	var users []string
	for _, u := range snap.Users {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		users = append(users, u.ID)
	}
	if len(users) > 0 {
		return users
	}

	for _, e := range snap.Events {
		if _, ok := seen[e.UserID]; ok {
			continue
		}
		seen[e.UserID] = struct{}{}
		users = append(users, e.UserID)
	}
	sort.Strings(users)
	return users
}
