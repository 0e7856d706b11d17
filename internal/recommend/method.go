// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"fmt"
	"strings"
)

// Method selects how recommendations are produced. All personalized methods
// share one generator and differ only in blend weights.
type Method string

const (
	// MethodHybrid blends collaborative and content similarity with the
	// configured weights.
	MethodHybrid Method = "hybrid"

	// MethodCollaborative uses collaborative similarity only (alpha=1, beta=0).
	MethodCollaborative Method = "collaborative"

	// MethodContent uses content similarity only (alpha=0, beta=1).
	MethodContent Method = "content"

	// MethodHeuristic skips personalization and serves the fallback policy.
	MethodHeuristic Method = "heuristic"
)

// AllMethods lists every method in report order.
var AllMethods = []Method{MethodHybrid, MethodCollaborative, MethodContent, MethodHeuristic}

// ParseMethod converts a method name. An empty name selects MethodHybrid.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "", MethodHybrid:
		return MethodHybrid, nil
	case MethodCollaborative:
		return MethodCollaborative, nil
	case MethodContent:
		return MethodContent, nil
	case MethodHeuristic:
		return MethodHeuristic, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// Personalized reports whether the method uses the similarity generator.
func (m Method) Personalized() bool {
	return m != MethodHeuristic
}

// Weights returns the (alpha, beta) blend for the method.
func (m Method) Weights(blend BlendConfig) (alpha, beta float64) {
	switch m {
	case MethodCollaborative:
		return 1, 0
	case MethodContent:
		return 0, 1
	default:
		return blend.Alpha, blend.Beta
	}
}

func (m Method) String() string {
	return string(m)
}
