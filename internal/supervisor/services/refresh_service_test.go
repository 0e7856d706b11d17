// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/affinity/internal/recommend/pipeline"
)

// fakeBuilder returns runs named run-1, run-2, ... or fails when err is set.
type fakeBuilder struct {
	calls atomic.Int32
	err   error
	built chan string
}

func newFakeBuilder() *fakeBuilder {
	return &fakeBuilder{built: make(chan string, 16)}
}

func (f *fakeBuilder) BuildRun(ctx context.Context) (*pipeline.Run, error) {
	n := f.calls.Add(1)
	if f.err != nil {
		f.notify("")
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := fmt.Sprintf("run-%d", n)
	f.notify(id)
	return &pipeline.Run{ID: id}, nil
}

func (f *fakeBuilder) notify(id string) {
	select {
	case f.built <- id:
	default:
	}
}

func (f *fakeBuilder) wait(t *testing.T) string {
	t.Helper()
	select {
	case id := <-f.built:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("no rebuild happened")
		return ""
	}
}

func serveInBackground(t *testing.T, svc suture.Service) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Serve did not return after cancellation")
		}
	})
	return cancel
}

func TestRefreshService_Interface(t *testing.T) {
	var _ suture.Service = (*RefreshService)(nil)
	var _ RunBuilder = (*pipeline.Refresher)(nil)
	var _ RunStore = (*pipeline.Holder)(nil)
}

func TestNewRefreshService_Defaults(t *testing.T) {
	t.Parallel()

	svc := NewRefreshService(newFakeBuilder(), &pipeline.Holder{}, RefreshServiceConfig{}, testLogger())
	if svc.config.Timeout != 10*time.Minute {
		t.Errorf("Timeout = %v, want 10m", svc.config.Timeout)
	}
	if svc.String() != "refresh-service" {
		t.Errorf("String() = %q, want refresh-service", svc.String())
	}
}

func TestRefreshService_OnStartup(t *testing.T) {
	t.Parallel()

	builder := newFakeBuilder()
	holder := &pipeline.Holder{}
	var built atomic.Int32
	svc := NewRefreshService(builder, holder, RefreshServiceConfig{
		OnStartup: true,
		OnBuilt:   func(*pipeline.Run) { built.Add(1) },
	}, testLogger())

	serveInBackground(t, svc)

	if id := builder.wait(t); id != "run-1" {
		t.Fatalf("built %q, want run-1", id)
	}
	// Store happens right after BuildRun returns.
	deadline := time.Now().Add(time.Second)
	for holder.Load() == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if run := holder.Load(); run == nil || run.ID != "run-1" {
		t.Fatalf("holder = %v, want run-1", run)
	}
	for built.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if built.Load() != 1 {
		t.Errorf("OnBuilt calls = %d, want 1", built.Load())
	}
}

func TestRefreshService_Trigger(t *testing.T) {
	t.Parallel()

	builder := newFakeBuilder()
	svc := NewRefreshService(builder, &pipeline.Holder{}, RefreshServiceConfig{}, testLogger())
	serveInBackground(t, svc)

	svc.Trigger()
	if id := builder.wait(t); id != "run-1" {
		t.Errorf("built %q, want run-1", id)
	}

	// No schedule: nothing else runs until the next trigger.
	select {
	case id := <-builder.built:
		t.Fatalf("unexpected rebuild %q", id)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRefreshService_TriggerCoalesces(t *testing.T) {
	t.Parallel()

	svc := NewRefreshService(newFakeBuilder(), &pipeline.Holder{}, RefreshServiceConfig{}, testLogger())
	for range 5 {
		svc.Trigger()
	}
	if got := len(svc.trigger); got != 1 {
		t.Errorf("pending triggers = %d, want 1", got)
	}
}

func TestRefreshService_Interval(t *testing.T) {
	t.Parallel()

	builder := newFakeBuilder()
	svc := NewRefreshService(builder, &pipeline.Holder{}, RefreshServiceConfig{
		Interval: 10 * time.Millisecond,
	}, testLogger())
	serveInBackground(t, svc)

	builder.wait(t)
	builder.wait(t)
	if builder.calls.Load() < 2 {
		t.Errorf("builds = %d, want at least 2", builder.calls.Load())
	}
}

func TestRefreshService_FailureKeepsPreviousRun(t *testing.T) {
	t.Parallel()

	holder := &pipeline.Holder{}
	holder.Store(&pipeline.Run{ID: "previous"})

	builder := newFakeBuilder()
	builder.err = errors.New("source unavailable")
	var built atomic.Int32
	svc := NewRefreshService(builder, holder, RefreshServiceConfig{
		OnBuilt: func(*pipeline.Run) { built.Add(1) },
	}, testLogger())

	if svc.Refresh(context.Background()) {
		t.Fatal("Refresh() = true, want false on build failure")
	}
	if run := holder.Load(); run.ID != "previous" {
		t.Errorf("holder run = %q, want previous", run.ID)
	}
	if built.Load() != 0 {
		t.Errorf("OnBuilt calls = %d, want 0", built.Load())
	}
}

func TestRefreshService_Refresh(t *testing.T) {
	t.Parallel()

	holder := &pipeline.Holder{}
	svc := NewRefreshService(newFakeBuilder(), holder, RefreshServiceConfig{}, testLogger())

	if !svc.Refresh(context.Background()) {
		t.Fatal("Refresh() = false, want true")
	}
	if !svc.Refresh(context.Background()) {
		t.Fatal("second Refresh() = false, want true")
	}
	if run := holder.Load(); run == nil || run.ID != "run-2" {
		t.Errorf("holder = %v, want run-2", run)
	}
}
