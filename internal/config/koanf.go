// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/affinity/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"affinity.yaml",
	"affinity.yml",
	"/etc/affinity/config.yaml",
	"/etc/affinity/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Engine defaults
// come from recommend.DefaultConfig.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()

	return &Config{
		Database: DatabaseConfig{
			Path:           ":memory:",
			MaxMemory:      "1GB",
			Threads:        0,
			QueryTimeout:   2 * time.Minute,
			BreakerEnabled: true,
		},
		Source: SourceConfig{
			Format:        SourceParquet,
			Dir:           "data",
			Views:         "content_views",
			Items:         "content_metadata",
			Users:         "adventurer_metadata",
			Subscriptions: "subscriptions",
		},
		Recommend: RecommendConfig{
			N:               engine.N,
			Alpha:           engine.Blend.Alpha,
			Beta:            engine.Blend.Beta,
			MinFraction:     engine.Engagement.MinFraction,
			MinSeconds:      engine.Engagement.MinSeconds,
			ExtraAttributes: []string{},
			RecentWindow:    engine.Fallback.RecentWindow,
			WidenedWindow:   engine.Fallback.WidenedWindow,
			MinRecentEvents: engine.Fallback.MinRecentEvents,
			Workers:         engine.Workers,
		},
		Evaluation: EvaluationConfig{
			Enabled:             true,
			LikedThreshold:      engine.Evaluation.LikedThreshold,
			SimilarityThreshold: engine.Evaluation.SimilarityThreshold,
			Strategy:            "stratified",
			Users:               30,
		},
		Output: OutputConfig{
			Dir:             "output",
			Recommendations: "recommendations.csv",
			Report:          "evaluation.json",
		},
		Server: ServerConfig{
			Enabled:         false,
			Port:            8090,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Refresh: RefreshConfig{
			OnStartup:        true,
			Interval:         0,
			Timeout:          10 * time.Minute,
			Watch:            false,
			WatchMinInterval: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load reads configuration from defaults, an optional YAML file, and the
// environment, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	//   DUCKDB_PATH -> database.path
	//   RECOMMEND_ALPHA -> recommend.alpha
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the config file to load, or "" if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"recommend.extra_attributes",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings; YAML lists are left as they are.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Database
	"duckdb_path":            "database.path",
	"duckdb_max_memory":      "database.max_memory",
	"duckdb_threads":         "database.threads",
	"duckdb_query_timeout":   "database.query_timeout",
	"duckdb_breaker_enabled": "database.breaker_enabled",

	// Record sources
	"source_format":        "source.format",
	"source_dir":           "source.dir",
	"source_views":         "source.views",
	"source_items":         "source.items",
	"source_users":         "source.users",
	"source_subscriptions": "source.subscriptions",

	// Engine
	"recommend_n":                 "recommend.n",
	"recommend_alpha":             "recommend.alpha",
	"recommend_beta":              "recommend.beta",
	"recommend_min_fraction":      "recommend.min_fraction",
	"recommend_min_seconds":       "recommend.min_seconds",
	"recommend_extra_attributes":  "recommend.extra_attributes",
	"recommend_recent_window":     "recommend.recent_window",
	"recommend_widened_window":    "recommend.widened_window",
	"recommend_min_recent_events": "recommend.min_recent_events",
	"recommend_workers":           "recommend.workers",

	// Evaluation
	"eval_enabled":              "evaluation.enabled",
	"eval_liked_threshold":      "evaluation.liked_threshold",
	"eval_similarity_threshold": "evaluation.similarity_threshold",
	"eval_strategy":             "evaluation.strategy",
	"eval_users":                "evaluation.users",

	// Output
	"output_dir":             "output.dir",
	"output_recommendations": "output.recommendations",
	"output_report":          "output.report",

	// HTTP server
	"http_enabled":          "server.enabled",
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Security
	"rate_limit_reqs":    "security.rate_limit_reqs",
	"rate_limit_window":  "security.rate_limit_window",
	"disable_rate_limit": "security.rate_limit_disabled",
	"cors_origins":       "security.cors_origins",

	// Refresh
	"refresh_on_startup":         "refresh.on_startup",
	"refresh_interval":           "refresh.interval",
	"refresh_timeout":            "refresh.timeout",
	"refresh_watch":              "refresh.watch",
	"refresh_watch_min_interval": "refresh.watch_min_interval",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - RECOMMEND_EXTRA_ATTRIBUTES -> recommend.extra_attributes
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
