// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package database

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/recommend"
)

// BreakerSettings configures BreakerLoader.
type BreakerSettings struct {
	// Name labels the breaker in logs and metrics.
	Name string

	// MaxFailures is the number of consecutive failed loads that opens the circuit.
	MaxFailures uint32

	// Timeout is how long the circuit stays open before a trial load.
	Timeout time.Duration
}

// DefaultBreakerSettings returns the settings used for snapshot loads.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:        "snapshot-loader",
		MaxFailures: 3,
		Timeout:     2 * time.Minute,
	}
}

// BreakerLoader wraps a SnapshotLoader with a circuit breaker.
//
// Snapshot loads are rare, so the breaker trips on consecutive failures rather
// than a failure ratio.
type BreakerLoader struct {
	next SnapshotLoader
	cb   *gobreaker.CircuitBreaker[*recommend.Snapshot]
	name string
}

var _ SnapshotLoader = (*BreakerLoader)(nil)

// NewBreakerLoader wraps next.
func NewBreakerLoader(next SnapshotLoader, settings BreakerSettings) *BreakerLoader {
	cbName := settings.Name

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[*recommend.Snapshot](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 1,
		Timeout:     settings.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			shouldTrip := counts.ConsecutiveFailures >= settings.MaxFailures
			if shouldTrip {
				logging.Warn().
					Str("breaker", cbName).
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("[CIRCUIT BREAKER] Opening snapshot loader circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &BreakerLoader{next: next, cb: cb, name: cbName}
}

// LoadSnapshot loads through the breaker. While the circuit is open it
// returns gobreaker.ErrOpenState without touching the source.
func (b *BreakerLoader) LoadSnapshot(ctx context.Context) (*recommend.Snapshot, error) {
	snap, err := b.cb.Execute(func() (*recommend.Snapshot, error) {
		return b.next.LoadSnapshot(ctx)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Str("breaker", b.name).Msg("[CIRCUIT BREAKER] Snapshot load rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
			counts := b.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return snap, nil
}

// State returns the current breaker state.
func (b *BreakerLoader) State() gobreaker.State {
	return b.cb.State()
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
