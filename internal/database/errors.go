// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/affinity/internal/logging"
)

// Sentinel errors for snapshot loading.
var (
	// ErrMissingColumn is returned when a source lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrUnknownFormat is returned for an unsupported source format.
	ErrUnknownFormat = errors.New("unknown source format")
)

// closeWithLog closes a resource and logs any error
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
