// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package algorithms implements the stages of a recommendation run.
//
// # Stages
//
// Matrix construction:
//   - BuildEngagementMatrix: dedup, engagement scoring, low-engagement filter
//   - DeriveScope: publisher scope from subscriptions
//
// Item-item similarity (SimilarityEngine implementations):
//   - Collaborative: cosine over engagement columns
//   - Content: cosine over duration + one-hot attribute vectors
//
// Blending and ranking:
//   - Align, Blend: hybrid affinity over the common item universe
//   - Generator: weighted affinity scoring of unseen items
//   - FallbackPolicy: popularity chain for users the generator cannot serve
//
// Evaluation:
//   - Evaluator: exact and similarity-credited precision
//   - SelectUsers: top or stratified evaluation cohorts
//
// # Usage Example
//
//	matrix, stats, err := algorithms.BuildEngagementMatrix(snap.Events, snap.ItemMap(), cfg.Engagement)
//	if err != nil {
//	    return err
//	}
//	scope, err := algorithms.DeriveScope(snap.Subscriptions, matrix)
//	...
//	collab, _ := algorithms.NewCollaborative(scoped).Compute(ctx)
//	content, _ := algorithms.NewContent(items, cfg.Content).Compute(ctx)
//	collab, content, err = algorithms.Align(collab, content)
//	affinity, err := algorithms.Blend(collab, content, 0.6, 0.4)
//	list := algorithms.NewGenerator(affinity, scoped).Recommend("u1", 3)
//
// # Determinism
//
// Every ranking breaks ties by ascending ID, and all matrices are indexed
// in ascending item ID order, so a run over an unchanged snapshot is
// reproducible.
//
// # Thread Safety
//
// Engines are stateless apart from their read-only inputs. Generator,
// FallbackPolicy and Evaluator never mutate after construction and are
// safe for concurrent use.
package algorithms
