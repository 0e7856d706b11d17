// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package config

import (
	"path/filepath"
	"time"

	"github.com/tomtom215/affinity/internal/recommend"
)

// Source formats understood by the record store.
const (
	SourceParquet = "parquet"
	SourceCSV     = "csv"
	SourceTable   = "table"
)

// Config holds all application configuration.
type Config struct {
	Database   DatabaseConfig   `koanf:"database"`
	Source     SourceConfig     `koanf:"source"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Evaluation EvaluationConfig `koanf:"evaluation"`
	Output     OutputConfig     `koanf:"output"`
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Refresh    RefreshConfig    `koanf:"refresh"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path         string        `koanf:"path"`          // ":memory:" queries the sources without a database file
	MaxMemory    string        `koanf:"max_memory"`    // DuckDB memory limit, e.g. "1GB"
	Threads      int           `koanf:"threads"`       // 0 = runtime.NumCPU()
	QueryTimeout time.Duration `koanf:"query_timeout"` // per-table load timeout

	// BreakerEnabled wraps snapshot loads in a circuit breaker so a missing or
	// corrupt source fails fast during repeated refreshes.
	BreakerEnabled bool `koanf:"breaker_enabled"`
}

// SourceConfig locates the four record tables.
//
// For file formats the table names are file names (without extension)
// relative to Dir. For SourceTable they are table names in the database.
type SourceConfig struct {
	Format        string `koanf:"format"`
	Dir           string `koanf:"dir"`
	Views         string `koanf:"views"`
	Items         string `koanf:"items"`
	Users         string `koanf:"users"`
	Subscriptions string `koanf:"subscriptions"`
}

// Location returns the file path or table name for a source table.
func (s *SourceConfig) Location(name string) string {
	switch s.Format {
	case SourceParquet, SourceCSV:
		return filepath.Join(s.Dir, name+"."+s.Format)
	default:
		return name
	}
}

// Files returns the source file paths, or nil for table sources.
func (s *SourceConfig) Files() []string {
	if s.Format == SourceTable {
		return nil
	}
	return []string{
		s.Location(s.Views),
		s.Location(s.Items),
		s.Location(s.Users),
		s.Location(s.Subscriptions),
	}
}

// RecommendConfig holds recommendation engine parameters.
type RecommendConfig struct {
	N               int      `koanf:"n"`
	Alpha           float64  `koanf:"alpha"`
	Beta            float64  `koanf:"beta"`
	MinFraction     float64  `koanf:"min_fraction"`
	MinSeconds      float64  `koanf:"min_seconds"`
	ExtraAttributes []string `koanf:"extra_attributes"`
	RecentWindow    int      `koanf:"recent_window"`
	WidenedWindow   int      `koanf:"widened_window"`
	MinRecentEvents int      `koanf:"min_recent_events"`
	Workers         int      `koanf:"workers"` // 0 = GOMAXPROCS
}

// EvaluationConfig holds evaluation settings.
type EvaluationConfig struct {
	Enabled             bool    `koanf:"enabled"`
	LikedThreshold      float64 `koanf:"liked_threshold"`
	SimilarityThreshold float64 `koanf:"similarity_threshold"`
	Strategy            string  `koanf:"strategy"` // "top" or "stratified"
	Users               int     `koanf:"users"`
}

// OutputConfig holds export locations. Empty file names disable the export.
type OutputConfig struct {
	Dir             string `koanf:"dir"`
	Recommendations string `koanf:"recommendations"`
	Report          string `koanf:"report"`
}

// RecommendationsPath returns the CSV export path, or "" when disabled.
func (o *OutputConfig) RecommendationsPath() string {
	if o.Recommendations == "" {
		return ""
	}
	return filepath.Join(o.Dir, o.Recommendations)
}

// ReportPath returns the evaluation report path, or "" when disabled.
func (o *OutputConfig) ReportPath() string {
	if o.Report == "" {
		return ""
	}
	return filepath.Join(o.Dir, o.Report)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig holds CORS and rate limit settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// RefreshConfig controls when the run is rebuilt while serving.
type RefreshConfig struct {
	OnStartup bool          `koanf:"on_startup"`
	Interval  time.Duration `koanf:"interval"` // 0 disables periodic rebuilds
	Timeout   time.Duration `koanf:"timeout"`

	// Watch rebuilds when a source file changes. File sources only.
	Watch bool `koanf:"watch"`

	// WatchMinInterval is the minimum spacing between watcher-triggered rebuilds.
	WatchMinInterval time.Duration `koanf:"watch_min_interval"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Engine returns the recommendation engine configuration.
func (c *Config) Engine() *recommend.Config {
	return &recommend.Config{
		N: c.Recommend.N,
		Blend: recommend.BlendConfig{
			Alpha: c.Recommend.Alpha,
			Beta:  c.Recommend.Beta,
		},
		Engagement: recommend.EngagementThresholds{
			MinFraction: c.Recommend.MinFraction,
			MinSeconds:  c.Recommend.MinSeconds,
		},
		Content: recommend.ContentConfig{
			ExtraAttributes: append([]string(nil), c.Recommend.ExtraAttributes...),
		},
		Fallback: recommend.FallbackConfig{
			RecentWindow:    c.Recommend.RecentWindow,
			WidenedWindow:   c.Recommend.WidenedWindow,
			MinRecentEvents: c.Recommend.MinRecentEvents,
		},
		Evaluation: recommend.EvaluationConfig{
			LikedThreshold:      c.Evaluation.LikedThreshold,
			SimilarityThreshold: c.Evaluation.SimilarityThreshold,
		},
		Workers: c.Recommend.Workers,
	}
}
