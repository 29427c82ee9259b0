// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package services

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/jadual/internal/logging"
)

// Runner is one pipeline run. Satisfied by *sync.Pipeline.
type Runner interface {
	Run(ctx context.Context) error
}

// SyncService runs the pipeline immediately and then once per interval.
//
// Runs never overlap: the next tick is only considered after the current
// run returns, and ticks missed while a run is in flight are dropped. A
// failed run is logged and the service keeps its schedule; returning the
// error would make suture restart the service and start a fresh run at
// once, hammering an upstream that just refused a login.
type SyncService struct {
	runner   Runner
	interval time.Duration
	name     string
}

// NewSyncService creates the service. A non-positive interval falls back to
// one day.
func NewSyncService(runner Runner, interval time.Duration) *SyncService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &SyncService{
		runner:   runner,
		interval: interval,
		name:     "sync-pipeline",
	}
}

// Serve implements suture.Service.
func (s *SyncService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.runOnce(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *SyncService) runOnce(ctx context.Context) {
	err := s.runner.Run(ctx)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		// shutting down; Serve returns on the next select
	case errors.Is(err, context.Canceled):
	default:
		logging.Error().Err(err).Dur("next_run_in", s.interval).Msg("Sync run failed")
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *SyncService) String() string {
	return s.name
}
