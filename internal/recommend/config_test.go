// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("blend weights sum to 1", func(t *testing.T) {
		if cfg.Blend.Alpha != 0.6 || cfg.Blend.Beta != 0.4 {
			t.Errorf("Blend = %+v, want alpha 0.6 beta 0.4", cfg.Blend)
		}
		if err := cfg.Blend.Validate(); err != nil {
			t.Errorf("Blend.Validate() = %v, want nil", err)
		}
	})

	t.Run("engagement thresholds", func(t *testing.T) {
		if cfg.Engagement.MinFraction != 0.05 {
			t.Errorf("Engagement.MinFraction = %f, want 0.05", cfg.Engagement.MinFraction)
		}
		if cfg.Engagement.MinSeconds != 30 {
			t.Errorf("Engagement.MinSeconds = %f, want 30", cfg.Engagement.MinSeconds)
		}
	})

	t.Run("fallback windows", func(t *testing.T) {
		if cfg.Fallback.RecentWindow != 60 || cfg.Fallback.WidenedWindow != 120 {
			t.Errorf("Fallback windows = %d/%d, want 60/120", cfg.Fallback.RecentWindow, cfg.Fallback.WidenedWindow)
		}
		if cfg.Fallback.MinRecentEvents != 100 {
			t.Errorf("Fallback.MinRecentEvents = %d, want 100", cfg.Fallback.MinRecentEvents)
		}
	})

	t.Run("evaluation thresholds", func(t *testing.T) {
		if cfg.Evaluation.LikedThreshold != 0.5 {
			t.Errorf("Evaluation.LikedThreshold = %f, want 0.5", cfg.Evaluation.LikedThreshold)
		}
		if cfg.Evaluation.SimilarityThreshold != 0.3 {
			t.Errorf("Evaluation.SimilarityThreshold = %f, want 0.3", cfg.Evaluation.SimilarityThreshold)
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
	}{
		{name: "default is valid", modify: func(*Config) {}},
		{name: "collaborative only", modify: func(c *Config) { c.Blend = BlendConfig{Alpha: 1, Beta: 0} }},
		{name: "content only", modify: func(c *Config) { c.Blend = BlendConfig{Alpha: 0, Beta: 1} }},
		{name: "weights not summing to 1", modify: func(c *Config) { c.Blend = BlendConfig{Alpha: 0.6, Beta: 0.6} }, wantError: true},
		{name: "negative alpha", modify: func(c *Config) { c.Blend = BlendConfig{Alpha: -0.2, Beta: 1.2} }, wantError: true},
		{name: "zero n", modify: func(c *Config) { c.N = 0 }, wantError: true},
		{name: "fraction above 1", modify: func(c *Config) { c.Engagement.MinFraction = 1.5 }, wantError: true},
		{name: "negative seconds", modify: func(c *Config) { c.Engagement.MinSeconds = -1 }, wantError: true},
		{name: "zero recent window", modify: func(c *Config) { c.Fallback.RecentWindow = 0 }, wantError: true},
		{name: "widened smaller than recent", modify: func(c *Config) { c.Fallback.WidenedWindow = 30 }, wantError: true},
		{name: "negative min events", modify: func(c *Config) { c.Fallback.MinRecentEvents = -5 }, wantError: true},
		{name: "liked threshold above 1", modify: func(c *Config) { c.Evaluation.LikedThreshold = 2 }, wantError: true},
		{name: "similarity threshold below -1", modify: func(c *Config) { c.Evaluation.SimilarityThreshold = -2 }, wantError: true},
		{name: "negative workers", modify: func(c *Config) { c.Workers = -1 }, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestBlendConfig_ValidateRounding(t *testing.T) {
	b := BlendConfig{Alpha: 0.7, Beta: 0.3}
	if err := b.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil for 0.7 + 0.3", err)
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Content.ExtraAttributes = []string{"studio"}

	clone := cfg.Clone()
	clone.Blend.Alpha = 0.9
	clone.Content.ExtraAttributes[0] = "rating"

	if cfg.Blend.Alpha != 0.6 {
		t.Errorf("original Blend.Alpha = %f after clone modification, want 0.6", cfg.Blend.Alpha)
	}
	if cfg.Content.ExtraAttributes[0] != "studio" {
		t.Errorf("original ExtraAttributes = %v after clone modification, want [studio]", cfg.Content.ExtraAttributes)
	}
}
