// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package recommend defines the domain model of the hybrid similarity
// recommendation engine.
//
// # Data Flow
//
// A run is computed from a full Snapshot of the record store:
//
//	Snapshot -> EngagementMatrix -> {collaborative, content} SimilarityMatrix
//	         -> hybrid affinity -> RecommendationList -> MethodReport
//
// The algorithms live in the algorithms subpackage; the pipeline subpackage
// wires them together into a per-run context object.
//
// # Engagement
//
// An engagement score is the watched fraction of an item's running time,
// clipped to [0, 1]. There is exactly one EngagementRecord per (user, item)
// pair; the event with the most seconds viewed wins.
//
// # Scope
//
// Recommendations are restricted to a ContentScope: the items viewed by
// subscribers of the publisher with the most distinct subscribers.
//
// # Errors
//
// Structural failures are typed (EmptyMatrixError, AlignmentError) and abort
// the run. Per-user conditions such as an unknown user or an empty history
// never produce errors; they show up as empty lists, fallback results, or
// reduced evaluation counts.
//
// # Thread Safety
//
// Every value produced for a run is immutable after construction and may be
// read from any number of goroutines.
//
// This package has no dependencies on other internal packages.
package recommend
