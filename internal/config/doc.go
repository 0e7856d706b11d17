// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package config provides layered configuration for Affinity.

Configuration is loaded with Koanf in three layers, each overriding the one
before it:

 1. Built-in defaults (defaultConfig)
 2. A YAML file: $CONFIG_PATH, or the first of DefaultConfigPaths that exists
 3. Environment variables, through an explicit name mapping

Only mapped environment variables are read, so unrelated variables never leak
into the configuration. Slice fields (CORS origins, extra content attributes)
accept comma-separated strings from the environment.

Sections:

  - Database: DuckDB connection (path, memory, threads, query timeout)
  - Source: where the four record tables come from (parquet, csv, table)
  - Recommend: engine parameters (N, blend weights, thresholds, fallback windows)
  - Evaluation: precision thresholds and evaluation user selection
  - Output: export file locations
  - Server: optional HTTP query surface
  - Security: CORS and rate limiting
  - Refresh: rebuild schedule and snapshot watching
  - Logging: zerolog level and format

Example:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	engineCfg := cfg.Engine()
*/
package config
