// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/affinity/internal/metrics"
)

// Triggerer accepts rebuild requests. Satisfied by *RefreshService.
type Triggerer interface {
	Trigger()
}

// SnapshotWatcher triggers a rebuild when one of the source files changes.
//
// Editors and exporters often touch a file several times in a row, so
// triggers are rate limited to one per minInterval. A change that arrives
// inside the interval is not dropped: a single deferred trigger fires once
// the interval has passed.
type SnapshotWatcher struct {
	files       map[string]struct{}
	dirs        []string
	target      Triggerer
	minInterval time.Duration
	logger      zerolog.Logger
	name        string

	// ready is closed once all directories are watched.
	ready chan struct{}
}

// NewSnapshotWatcher creates a watcher for the given source files.
// The containing directories are watched so files replaced by rename are
// still seen.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSnapshotWatcher(files []string, target Triggerer, minInterval time.Duration, logger zerolog.Logger) *SnapshotWatcher {
	w := &SnapshotWatcher{
		files:       make(map[string]struct{}, len(files)),
		target:      target,
		minInterval: minInterval,
		logger:      logger.With().Str("service", "snapshot-watcher").Logger(),
		name:        "snapshot-watcher",
		ready:       make(chan struct{}),
	}
	seen := make(map[string]struct{})
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		f = filepath.Clean(f)
		w.files[f] = struct{}{}
		dir := filepath.Dir(f)
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			w.dirs = append(w.dirs, dir)
		}
	}
	return w
}

// Serve implements suture.Service.
func (w *SnapshotWatcher) Serve(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			w.logger.Warn().Err(closeErr).Msg("Failed to close file watcher")
		}
	}()

	for _, dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.markReady()
	w.logger.Info().Strs("dirs", w.dirs).Dur("min_interval", w.minInterval).Msg("Watching source files")

	limiter := rate.NewLimiter(rate.Every(w.minInterval), 1)
	var deferred *time.Timer
	var deferredC <-chan time.Time
	defer func() {
		if deferred != nil {
			deferred.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("file watcher closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Source file changed")

			if deferredC != nil {
				metrics.RecordSnapshotChange(false)
				continue
			}
			if limiter.Allow() {
				w.fire()
				continue
			}
			metrics.RecordSnapshotChange(false)
			deferred = time.NewTimer(limiter.Reserve().Delay())
			deferredC = deferred.C

		case <-deferredC:
			deferred, deferredC = nil, nil
			w.fire()

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("file watcher closed")
			}
			w.logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

func (w *SnapshotWatcher) fire() {
	metrics.RecordSnapshotChange(true)
	w.logger.Info().Msg("Source changed, triggering rebuild")
	w.target.Trigger()
}

func (w *SnapshotWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	_, ok := w.files[filepath.Clean(event.Name)]
	return ok
}

func (w *SnapshotWatcher) markReady() {
	select {
	case <-w.ready:
	default:
		close(w.ready)
	}
}

// String returns the service name for logging.
func (w *SnapshotWatcher) String() string {
	return w.name
}
