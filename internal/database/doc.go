// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package database is the DuckDB-backed record store.

DuckDB is used as an embedded query engine over the four record tables
(content views, content metadata, user metadata, subscriptions). The tables
can be parquet files, CSV files, or tables already present in the database
file, selected by config.SourceConfig.

Each run reads a full snapshot:

	db, err := database.New(&cfg.Database)
	loader := database.NewLoader(db, cfg.Source, cfg.Recommend.ExtraAttributes)
	snap, err := loader.LoadSnapshot(ctx)

Optional columns (day_of_month, minutes, genre_id, language_code,
primary_language, age, region and configured extra attributes) are detected
with DESCRIBE and read as NULL when absent. Missing required columns fail the
load with ErrMissingColumn.

BreakerLoader wraps any SnapshotLoader in a sony/gobreaker circuit breaker so
that repeated refreshes against a broken source fail fast instead of
rescanning files on every attempt.
*/
package database
