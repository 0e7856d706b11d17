// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package supervisor provides Suture-based process supervision for the
long-running serve mode.

# Tree

	affinity (root)
	├── data-layer
	│   ├── refresh-service      rebuilds the run (startup, interval, triggers)
	│   └── snapshot-watcher     turns record store file changes into triggers
	└── api-layer
	    └── http-server          query API

A crash in the data layer never takes down the API: the last good run stays
in the holder and keeps being served while suture restarts the failed
service with backoff.

# Logging

Supervisor events (service panics, restarts, backoff) are logged through
sutureslog. The slog.Logger is backed by zerolog via
logging.NewSlogLogger, so they land in the same structured stream as the
rest of the application.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(refresh)
	tree.AddDataService(watcher)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
	return tree.Serve(ctx)
*/
package supervisor
