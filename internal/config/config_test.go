// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/affinity/internal/recommend"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "DUCKDB_PATH",
		},
		{
			name:    "negative threads",
			mutate:  func(c *Config) { c.Database.Threads = -1 },
			wantErr: "DUCKDB_THREADS",
		},
		{
			name:    "unknown source format",
			mutate:  func(c *Config) { c.Source.Format = "avro" },
			wantErr: "SOURCE_FORMAT",
		},
		{
			name:    "missing views table",
			mutate:  func(c *Config) { c.Source.Views = "" },
			wantErr: "SOURCE_VIEWS",
		},
		{
			name:    "weights do not sum to one",
			mutate:  func(c *Config) { c.Recommend.Alpha = 0.7 },
			wantErr: "blend.alpha + blend.beta",
		},
		{
			name:    "zero n",
			mutate:  func(c *Config) { c.Recommend.N = 0 },
			wantErr: "n must be positive",
		},
		{
			name:    "liked threshold out of range",
			mutate:  func(c *Config) { c.Evaluation.LikedThreshold = 1.5 },
			wantErr: "evaluation.liked_threshold",
		},
		{
			name:    "unknown strategy",
			mutate:  func(c *Config) { c.Evaluation.Strategy = "random" },
			wantErr: "EVAL_STRATEGY",
		},
		{
			name: "bad port ignored when server disabled",
			mutate: func(c *Config) {
				c.Server.Enabled = false
				c.Server.Port = 0
			},
		},
		{
			name: "bad port",
			mutate: func(c *Config) {
				c.Server.Enabled = true
				c.Server.Port = 70000
			},
			wantErr: "HTTP_PORT",
		},
		{
			name:    "rate limit window too short",
			mutate:  func(c *Config) { c.Security.RateLimitWindow = time.Millisecond },
			wantErr: "RATE_LIMIT_WINDOW",
		},
		{
			name: "rate limit ignored when disabled",
			mutate: func(c *Config) {
				c.Security.RateLimitDisabled = true
				c.Security.RateLimitReqs = 0
			},
		},
		{
			name: "watch needs file source",
			mutate: func(c *Config) {
				c.Refresh.Watch = true
				c.Source.Format = SourceTable
			},
			wantErr: "REFRESH_WATCH",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestEngine_MatchesEngineDefaults(t *testing.T) {
	t.Parallel()

	got := defaultConfig().Engine()
	want := recommend.DefaultConfig()

	if got.N != want.N || got.Blend != want.Blend || got.Engagement != want.Engagement ||
		got.Fallback != want.Fallback || got.Evaluation != want.Evaluation || got.Workers != want.Workers {
		t.Errorf("Engine() = %+v, want %+v", got, want)
	}
	if len(got.Content.ExtraAttributes) != 0 {
		t.Errorf("ExtraAttributes = %v, want empty", got.Content.ExtraAttributes)
	}
}

func TestEngine_CopiesExtraAttributes(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Recommend.ExtraAttributes = []string{"studio"}
	engine := cfg.Engine()
	engine.Content.ExtraAttributes[0] = "changed"

	if cfg.Recommend.ExtraAttributes[0] != "studio" {
		t.Error("Engine() must not alias the configured attribute slice")
	}
}

func TestSourceConfig_Location(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{SourceParquet, filepath.Join("data", "content_views.parquet")},
		{SourceCSV, filepath.Join("data", "content_views.csv")},
		{SourceTable, "content_views"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()
			s := SourceConfig{Format: tt.format, Dir: "data"}
			if got := s.Location("content_views"); got != tt.want {
				t.Errorf("Location() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSourceConfig_Files(t *testing.T) {
	t.Parallel()

	src := defaultConfig().Source
	if got := len(src.Files()); got != 4 {
		t.Errorf("len(Files()) = %d, want 4", got)
	}

	src.Format = SourceTable
	if got := src.Files(); got != nil {
		t.Errorf("Files() = %v, want nil for table sources", got)
	}
}

func TestOutputConfig_Paths(t *testing.T) {
	t.Parallel()

	out := OutputConfig{Dir: "out", Recommendations: "recs.csv"}
	if got := out.RecommendationsPath(); got != filepath.Join("out", "recs.csv") {
		t.Errorf("RecommendationsPath() = %q", got)
	}
	if got := out.ReportPath(); got != "" {
		t.Errorf("ReportPath() = %q, want empty when disabled", got)
	}
}
