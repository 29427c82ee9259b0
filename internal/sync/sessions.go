// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package sync

import (
	"context"

	"github.com/tomtom215/jadual/internal/config"
	"github.com/tomtom215/jadual/internal/metrics"
	"github.com/tomtom215/jadual/internal/models"
	"github.com/tomtom215/jadual/internal/models/ttms"
)

// Sessions mirrors the academic calendar (sesisemester).
type Sessions struct{ job }

// NewSessions creates the sessions synchronizer.
func NewSessions(deps Deps) *Sessions {
	return &Sessions{job{name: config.JobSessions, deps: deps}}
}

func (s *Sessions) Run(ctx context.Context) error {
	if err := s.deps.wait(ctx, s.deps.Options.Delay); err != nil {
		return err
	}

	res, err := s.deps.Upstream.FetchSessions(ctx)
	if err != nil {
		if IsFatal(err) {
			return err
		}
		s.failed(ctx, err).Msg("Failed to fetch sessions")
		s.done(ctx)
		return nil
	}
	metrics.RecordSyncItem(s.name, outcomeLabel(res.Outcome()))
	if res.IsUpstreamError() {
		s.log(ctx).Error().Err(res.Err()).Msg("Failed to fetch sessions")
		s.done(ctx)
		return nil
	}

	rows := make([]models.AcademicSession, 0, len(res.Records()))
	for _, rec := range res.Records() {
		if row, ok := s.toRow(ctx, rec); ok {
			rows = append(rows, row)
		}
	}

	n, err := s.deps.Store.InsertSessions(ctx, rows)
	s.inserted(ctx, n, err)

	s.log(ctx).Info().Int("count", len(res.Records())).Int64("inserted", n).Msg("Inserted sessions")
	s.done(ctx)
	return nil
}

func (s *Sessions) toRow(ctx context.Context, rec ttms.Session) (models.AcademicSession, bool) {
	if !s.valid(ctx, &rec, "session") {
		return models.AcademicSession{}, false
	}

	start, err := parseSessionDate(rec.StartDate)
	if err != nil {
		s.log(ctx).Warn().Err(err).Str("session", rec.Session).Int("semester", rec.Semester).Msg("Dropping session with bad start date")
		return models.AcademicSession{}, false
	}
	end, err := parseSessionDate(rec.EndDate)
	if err != nil {
		s.log(ctx).Warn().Err(err).Str("session", rec.Session).Int("semester", rec.Semester).Msg("Dropping session with bad end date")
		return models.AcademicSession{}, false
	}

	row := models.AcademicSession{Session: rec.Session, Semester: rec.Semester, StartDate: start, EndDate: end}
	return row, s.valid(ctx, &row, "session")
}
