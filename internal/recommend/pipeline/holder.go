// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package pipeline

import "sync/atomic"

// Holder publishes the current run. The zero value holds no run.
type Holder struct {
	current atomic.Pointer[Run]
}

// Load returns the current run, or nil before the first Store.
func (h *Holder) Load() *Run {
	return h.current.Load()
}

// Store replaces the current run and returns the previous one.
func (h *Holder) Store(run *Run) *Run {
	return h.current.Swap(run)
}
