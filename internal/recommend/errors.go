// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks against the structural error types.
var (
	ErrEmptyMatrix   = errors.New("empty engagement matrix")
	ErrAlignment     = errors.New("similarity matrices cannot be aligned")
	ErrUnknownMethod = errors.New("unknown recommendation method")
)

// EmptyMatrixError is returned when no items survive matrix construction.
// No similarity can be computed, so the run cannot continue.
type EmptyMatrixError struct {
	// Stage names the step that left the matrix empty ("filter" or "scope").
	Stage string

	// Events is the number of input events at that stage.
	Events int
}

func (e *EmptyMatrixError) Error() string {
	return fmt.Sprintf("empty engagement matrix after %s (%d input events)", e.Stage, e.Events)
}

// Is makes errors.Is(err, ErrEmptyMatrix) match.
func (e *EmptyMatrixError) Is(target error) bool {
	return target == ErrEmptyMatrix
}

// AlignmentError is returned when two similarity matrices do not share a
// common item universe.
type AlignmentError struct {
	Left   int
	Right  int
	Reason string
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("cannot align similarity matrices (%d vs %d items): %s", e.Left, e.Right, e.Reason)
}

// Is makes errors.Is(err, ErrAlignment) match.
func (e *AlignmentError) Is(target error) bool {
	return target == ErrAlignment
}
