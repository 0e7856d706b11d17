// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package main is the entry point for the Affinity recommendation service.

Affinity reads view events, the content catalog, users and publisher
subscriptions from a DuckDB record store, blends item-item collaborative
and content similarity, and produces top-N recommendation lists together
with an offline evaluation report.

# Modes

Batch (HTTP_ENABLED=false, the default):

 1. Configuration: Koanf v2 with defaults, config.yaml and environment
 2. Logging: zerolog with JSON/console output
 3. Database: DuckDB over parquet files, csv files or existing tables
 4. Build: one run (matrix, scope, similarities, blend, fallback)
 5. Export: recommendations CSV and evaluation report JSON, then exit

Server (HTTP_ENABLED=true) runs the same build under supervision:

	RootSupervisor ("affinity")
	├── DataSupervisor ("data-layer")
	│   ├── Refresh Service (startup, interval, on demand)
	│   └── Snapshot Watcher (optional, REFRESH_WATCH=true)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (query API and /metrics)

Every published run is exported the same way as in batch mode. A failed
rebuild keeps the previous run serving.

# Configuration

	# Record store
	SOURCE_FORMAT=parquet        # parquet, csv or table
	SOURCE_DIR=data
	DUCKDB_PATH=:memory:

	# Engine
	RECOMMEND_N=3
	RECOMMEND_ALPHA=0.6
	RECOMMEND_BETA=0.4

	# Output
	OUTPUT_DIR=output

	# Server
	HTTP_ENABLED=false
	HTTP_PORT=8090
	LOG_LEVEL=info
	LOG_FORMAT=json

See internal/config for the full list.

# Signal Handling

SIGINT and SIGTERM cancel the root context. Batch builds stop at the next
stage boundary; in server mode the supervisor tree drains the HTTP server
and stops the refresh service.
*/
package main
