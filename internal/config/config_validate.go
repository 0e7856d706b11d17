// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package config

import (
	"fmt"
	"time"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

var validStrategies = map[string]bool{
	"top":        true,
	"stratified": true,
}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateSource(); err != nil {
		return err
	}

	// Engine parameters are validated by the engine's own rules.
	if err := c.Engine().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	if err := c.validateEvaluation(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateRateLimits(); err != nil {
		return err
	}

	if err := c.validateRefresh(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH must not be empty (use :memory: for no database file)")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative, got %d", c.Database.Threads)
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("DUCKDB_QUERY_TIMEOUT must be positive, got %v", c.Database.QueryTimeout)
	}
	return nil
}

func (c *Config) validateSource() error {
	switch c.Source.Format {
	case SourceParquet, SourceCSV, SourceTable:
	default:
		return fmt.Errorf("SOURCE_FORMAT must be one of: parquet, csv, table, got %q", c.Source.Format)
	}

	names := []struct{ env, value string }{
		{"SOURCE_VIEWS", c.Source.Views},
		{"SOURCE_ITEMS", c.Source.Items},
		{"SOURCE_USERS", c.Source.Users},
		{"SOURCE_SUBSCRIPTIONS", c.Source.Subscriptions},
	}
	for _, n := range names {
		if n.value == "" {
			return fmt.Errorf("%s must not be empty", n.env)
		}
	}
	return nil
}

func (c *Config) validateEvaluation() error {
	if !validStrategies[c.Evaluation.Strategy] {
		return fmt.Errorf("EVAL_STRATEGY must be one of: top, stratified, got %q", c.Evaluation.Strategy)
	}
	if c.Evaluation.Users < 1 {
		return fmt.Errorf("EVAL_USERS must be positive, got %d", c.Evaluation.Users)
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	return nil
}

// validateRateLimits validates rate limit settings unless rate limiting is disabled
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQS must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateRefresh() error {
	if c.Refresh.Interval < 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be non-negative, got %v", c.Refresh.Interval)
	}
	if c.Refresh.Timeout <= 0 {
		return fmt.Errorf("REFRESH_TIMEOUT must be positive, got %v", c.Refresh.Timeout)
	}
	if c.Refresh.Watch && c.Source.Format == SourceTable {
		return fmt.Errorf("REFRESH_WATCH requires a file source, got SOURCE_FORMAT=table")
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
