// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockRunner counts runs and tracks overlap.
type mockRunner struct {
	runs     atomic.Int32
	active   atomic.Int32
	overlaps atomic.Int32
	duration time.Duration
	err      error
}

func (m *mockRunner) Run(ctx context.Context) error {
	if m.active.Add(1) > 1 {
		m.overlaps.Add(1)
	}
	defer m.active.Add(-1)
	m.runs.Add(1)

	if m.duration > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.duration):
		}
	}
	return m.err
}

func TestSyncServiceInterface(t *testing.T) {
	var _ suture.Service = (*SyncService)(nil)
}

func TestNewSyncService_DefaultInterval(t *testing.T) {
	svc := NewSyncService(&mockRunner{}, 0)
	if svc.interval != 24*time.Hour {
		t.Errorf("interval = %v, want 24h", svc.interval)
	}
	if svc.String() != "sync-pipeline" {
		t.Errorf("name = %q", svc.String())
	}
}

func TestSyncService(t *testing.T) {
	t.Run("runs immediately and then on every tick", func(t *testing.T) {
		runner := &mockRunner{}
		svc := NewSyncService(runner, 20*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()

		err := svc.Serve(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v, want context.DeadlineExceeded", err)
		}
		if runner.runs.Load() < 3 {
			t.Errorf("runs = %d, want at least 3", runner.runs.Load())
		}
	})

	t.Run("runs never overlap", func(t *testing.T) {
		runner := &mockRunner{duration: 30 * time.Millisecond}
		svc := NewSyncService(runner, 5*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()
		_ = svc.Serve(ctx)

		if runner.overlaps.Load() != 0 {
			t.Errorf("overlapping runs = %d", runner.overlaps.Load())
		}
	})

	t.Run("failed run keeps the schedule", func(t *testing.T) {
		runner := &mockRunner{err: errors.New("ttms authentication failed")}
		svc := NewSyncService(runner, 20*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err := svc.Serve(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v, want the service to keep running until shutdown", err)
		}
		if runner.runs.Load() < 2 {
			t.Errorf("runs = %d, want retries on the next tick", runner.runs.Load())
		}
	})

	t.Run("cancellation interrupts a run", func(t *testing.T) {
		runner := &mockRunner{duration: time.Hour}
		svc := NewSyncService(runner, time.Hour)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("err = %v, want context.Canceled", err)
			}
		case <-time.After(time.Second):
			t.Fatal("service did not stop")
		}
	})
}
