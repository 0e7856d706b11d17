// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package pipeline turns a snapshot into a queryable recommendation run.
//
// Engine.Build executes the build stages in order and returns a Run, the
// explicit per-run context object. A Run owns every matrix computed for the
// snapshot and answers recommendation, similar-item, and evaluation queries
// without further I/O:
//
//	engine, err := pipeline.NewEngine(cfg.Engine(), logger)
//	run, err := engine.Build(ctx, snap)
//	list := run.Recommend("4uds", 3, recommend.MethodHybrid)
//	reports, err := run.Compare(ctx, 3, run.SelectUsers(algorithms.SelectStratified, 30))
//
// Build stages, each timed and exported as a metric:
//
//  1. matrix: deduplicate, score and filter engagement records
//  2. scope: pick the publisher scope and restrict the matrix to it
//  3. collaborative: item-item cosine over the scoped matrix
//  4. content: item-item cosine over item attributes
//  5. blend: align both matrices and blend one affinity matrix per method
//  6. fallback: precompute the popularity rankings
//
// A Run is immutable once built. Holder publishes the current run to
// concurrent readers while the refresh service swaps in new ones.
package pipeline
