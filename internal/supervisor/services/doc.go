// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package services provides suture.Service wrappers for Affinity components.

Each wrapper translates a component lifecycle into suture's context-aware
Serve pattern:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts the blocking ListenAndServe into Serve

Refresh Service (RefreshService):
  - Rebuilds the recommendation run and publishes it to the holder
  - Runs on startup, on an interval, and on demand via Trigger

Snapshot Watcher (SnapshotWatcher):
  - Watches source files with fsnotify
  - Triggers a refresh when a file changes, at most once per interval

# Usage Example

	holder := &pipeline.Holder{}
	refresh := services.NewRefreshService(builder, holder, refreshCfg, logger)
	tree.AddDataService(refresh)
	tree.AddDataService(services.NewSnapshotWatcher(files, refresh, time.Minute, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

A failed rebuild is not a service failure: the previous run keeps serving
and the error is logged and counted in pipeline_runs_total.
*/
package services
