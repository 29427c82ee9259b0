// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package sync

import (
	"context"
	"fmt"

	"github.com/tomtom215/jadual/internal/config"
	"github.com/tomtom215/jadual/internal/metrics"
	"github.com/tomtom215/jadual/internal/models"
	"github.com/tomtom215/jadual/internal/models/ttms"
	"github.com/tomtom215/jadual/internal/session"
	"github.com/tomtom215/jadual/internal/upstream"
)

// Lecturers mirrors the teaching staff of every stored session (pensyarah,
// elevated).
type Lecturers struct{ job }

// NewLecturers creates the lecturers synchronizer.
func NewLecturers(deps Deps) *Lecturers {
	return &Lecturers{job{name: config.JobLecturers, deps: deps}}
}

func (l *Lecturers) Run(ctx context.Context) error {
	sessions, err := l.deps.Store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	for i, sess := range sessions {
		if err := l.deps.wait(ctx, l.deps.Options.Delay); err != nil {
			return err
		}

		res, err := session.Fetch(ctx, l.deps.Session, func(ctx context.Context, sessionID string) (upstream.Result[ttms.Lecturer], error) {
			return l.deps.Upstream.FetchLecturers(ctx, sessionID, sess.Session, sess.Semester)
		})
		if err != nil {
			if IsFatal(err) {
				return err
			}
			l.failed(ctx, err).Str("session", sess.Session).Int("semester", sess.Semester).Msg("Failed to fetch lecturers for session")
			continue
		}
		metrics.RecordSyncItem(l.name, outcomeLabel(res.Outcome()))
		if res.IsUpstreamError() {
			l.log(ctx).Error().Err(res.Err()).Str("session", sess.Session).Int("semester", sess.Semester).Msg("Failed to fetch lecturers for session")
			continue
		}

		rows := make([]models.Lecturer, 0, len(res.Records()))
		for _, rec := range res.Records() {
			row := models.Lecturer{WorkerNo: rec.WorkerNo, Name: rec.Name}
			if l.valid(ctx, &row, "lecturer") {
				rows = append(rows, row)
			}
		}

		n, err := l.deps.Store.InsertLecturers(ctx, rows)
		l.inserted(ctx, n, err)

		l.log(ctx).Info().
			Int64("inserted", n).
			Str("session", sess.Session).
			Int("semester", sess.Semester).
			Str("position", progress(i, len(sessions))).
			Msgf("Inserted %d lecturer(s) for session %s %d", len(rows), sess.Session, sess.Semester)
	}

	l.done(ctx)
	return nil
}
