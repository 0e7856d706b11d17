// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package pipeline

import (
	"context"
	"fmt"

	"github.com/tomtom215/affinity/internal/recommend"
)

// SnapshotLoader loads the records a run is computed from.
// Implemented by database.Loader and database.BreakerLoader.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (*recommend.Snapshot, error)
}

// Refresher reloads the record store and builds a fresh run from it.
type Refresher struct {
	loader SnapshotLoader
	engine *Engine
}

// NewRefresher creates a refresher.
func NewRefresher(loader SnapshotLoader, engine *Engine) *Refresher {
	return &Refresher{loader: loader, engine: engine}
}

// BuildRun loads a snapshot and builds a run from it.
func (r *Refresher) BuildRun(ctx context.Context) (*Run, error) {
	snap, err := r.loader.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return r.engine.Build(ctx, snap)
}
