// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package models defines the HTTP API data structures for Affinity.

Every endpoint answers with the APIResponse envelope. The Data field carries
one of the response types in this package:

  - RecommendationResponse: ranked items for one user
  - SimilarItemsResponse: nearest neighbours of one item
  - ScopeResponse: the content scope and matrix shape of the loaded run
  - EvaluationResponse: per-method precision report
  - HealthResponse: liveness and readiness

Domain types (items, matrices, reports) live in internal/recommend; the types
here only shape them for JSON clients.
*/
package models
