// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"fmt"
	"math"
)

// WeightTolerance bounds the rounding error accepted when checking that blend
// weights sum to one.
const WeightTolerance = 1e-9

// Config contains all configuration for a recommendation run.
type Config struct {
	// N is the default recommendation list size.
	N int `json:"n"`

	// Blend holds the hybrid affinity weights.
	Blend BlendConfig `json:"blend"`

	// Engagement holds the low-engagement filter thresholds.
	Engagement EngagementThresholds `json:"engagement"`

	// Content configures the content feature vector.
	Content ContentConfig `json:"content"`

	// Fallback configures the popularity fallback chain.
	Fallback FallbackConfig `json:"fallback"`

	// Evaluation configures the precision metrics.
	Evaluation EvaluationConfig `json:"evaluation"`

	// Workers bounds per-user scoring parallelism. Zero uses GOMAXPROCS.
	Workers int `json:"workers"`
}

// BlendConfig defines the hybrid weights. Alpha weights collaborative
// similarity and Beta content similarity; they must sum to 1.
type BlendConfig struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

// EngagementThresholds decide which deduplicated records are kept.
// A record survives if either threshold is met.
type EngagementThresholds struct {
	// MinFraction is the minimum watched fraction of the item.
	// Default: 0.05
	MinFraction float64 `json:"min_fraction"`

	// MinSeconds is the minimum raw seconds viewed.
	// Default: 30
	MinSeconds float64 `json:"min_seconds"`
}

// ContentConfig configures the content feature vector.
type ContentConfig struct {
	// ExtraAttributes names additional categorical item columns (e.g. "studio")
	// one-hot encoded after genre and language.
	ExtraAttributes []string `json:"extra_attributes"`
}

// FallbackConfig configures the popularity fallback chain.
type FallbackConfig struct {
	// RecentWindow is the recency window in calendar ticks.
	// Default: 60
	RecentWindow int `json:"recent_window"`

	// WidenedWindow is used when the recent window holds too few events.
	// Default: 120
	WidenedWindow int `json:"widened_window"`

	// MinRecentEvents is the event count below which the window is widened.
	// Default: 100
	MinRecentEvents int `json:"min_recent_events"`
}

// EvaluationConfig configures the precision metrics.
type EvaluationConfig struct {
	// LikedThreshold is the engagement score at which an item counts as liked.
	// Default: 0.5
	LikedThreshold float64 `json:"liked_threshold"`

	// SimilarityThreshold is the minimum collaborative similarity that earns
	// partial credit for a miss.
	// Default: 0.3
	SimilarityThreshold float64 `json:"similarity_threshold"`
}

// DefaultConfig returns the configuration used by the reference runs.
func DefaultConfig() *Config {
	return &Config{
		N: 3,
		Blend: BlendConfig{
			Alpha: 0.6,
			Beta:  0.4,
		},
		Engagement: EngagementThresholds{
			MinFraction: 0.05,
			MinSeconds:  30,
		},
		Fallback: FallbackConfig{
			RecentWindow:    60,
			WidenedWindow:   120,
			MinRecentEvents: 100,
		},
		Evaluation: EvaluationConfig{
			LikedThreshold:      0.5,
			SimilarityThreshold: 0.3,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.N < 1 {
		return fmt.Errorf("n must be positive, got %d", c.N)
	}

	if err := c.Blend.Validate(); err != nil {
		return err
	}

	if c.Engagement.MinFraction < 0 || c.Engagement.MinFraction > 1 {
		return fmt.Errorf("engagement.min_fraction must be in [0, 1], got %f", c.Engagement.MinFraction)
	}
	if c.Engagement.MinSeconds < 0 {
		return fmt.Errorf("engagement.min_seconds must be non-negative, got %f", c.Engagement.MinSeconds)
	}

	if c.Fallback.RecentWindow < 1 {
		return fmt.Errorf("fallback.recent_window must be positive, got %d", c.Fallback.RecentWindow)
	}
	if c.Fallback.WidenedWindow < c.Fallback.RecentWindow {
		return fmt.Errorf("fallback.widened_window must be >= fallback.recent_window, got %d < %d",
			c.Fallback.WidenedWindow, c.Fallback.RecentWindow)
	}
	if c.Fallback.MinRecentEvents < 0 {
		return fmt.Errorf("fallback.min_recent_events must be non-negative, got %d", c.Fallback.MinRecentEvents)
	}

	if c.Evaluation.LikedThreshold < 0 || c.Evaluation.LikedThreshold > 1 {
		return fmt.Errorf("evaluation.liked_threshold must be in [0, 1], got %f", c.Evaluation.LikedThreshold)
	}
	if c.Evaluation.SimilarityThreshold < -1 || c.Evaluation.SimilarityThreshold > 1 {
		return fmt.Errorf("evaluation.similarity_threshold must be in [-1, 1], got %f", c.Evaluation.SimilarityThreshold)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}

	return nil
}

// Validate checks that both weights are in [0, 1] and sum to 1.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (b BlendConfig) Validate() error {
	if b.Alpha < 0 || b.Alpha > 1 {
		return fmt.Errorf("blend.alpha must be in [0, 1], got %f", b.Alpha)
	}
	if b.Beta < 0 || b.Beta > 1 {
		return fmt.Errorf("blend.beta must be in [0, 1], got %f", b.Beta)
	}
	if math.Abs(b.Alpha+b.Beta-1) > WeightTolerance {
		return fmt.Errorf("blend.alpha + blend.beta must equal 1, got %f", b.Alpha+b.Beta)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Content.ExtraAttributes = append([]string(nil), c.Content.ExtraAttributes...)
	return &out
}
