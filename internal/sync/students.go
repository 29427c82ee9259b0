// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/jadual/internal/config"
	"github.com/tomtom215/jadual/internal/metrics"
	"github.com/tomtom215/jadual/internal/models"
	"github.com/tomtom215/jadual/internal/models/ttms"
	"github.com/tomtom215/jadual/internal/session"
	"github.com/tomtom215/jadual/internal/upstream"
)

// Students pages through the elevated student listing (pelajar) of every
// session at or after the student floor. Each page is stored before the next
// one is requested. Students without a national ID get the identity
// sentinel so the backfill job can find them later.
type Students struct{ job }

// NewStudents creates the students synchronizer.
func NewStudents(deps Deps) *Students {
	return &Students{job{name: config.JobStudents, deps: deps}}
}

func (s *Students) Run(ctx context.Context) error {
	sessions, err := s.deps.Store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	pager := Paginator[ttms.Student]{
		Entity: upstream.EntityStudents,
		Limit:  s.deps.Options.StudentPageSize,
		Delay:  s.deps.Options.HeavyDelay,
		Sleep:  s.deps.Sleep,
	}

	for i, sess := range sessions {
		if sessionBefore(sess.Session, s.deps.Options.StudentFloor) {
			metrics.RecordSyncItem(s.name, metrics.OutcomeSkipped)
			continue
		}

		fetch := func(ctx context.Context, offset, limit int) (upstream.Result[ttms.Student], error) {
			return session.Fetch(ctx, s.deps.Session, func(ctx context.Context, sessionID string) (upstream.Result[ttms.Student], error) {
				return s.deps.Upstream.FetchStudents(ctx, sessionID, upstream.StudentQuery{
					Session:  sess.Session,
					Semester: sess.Semester,
					Limit:    limit,
					Offset:   offset,
				})
			})
		}
		sink := func(ctx context.Context, page []ttms.Student, offset int) error {
			s.storePage(ctx, sess, page, offset)
			return nil
		}

		stats, err := pager.Run(ctx, fetch, sink)
		switch {
		case err == nil:
			metrics.RecordSyncItem(s.name, metrics.OutcomeOK)
		case IsFatal(err):
			return err
		case errors.Is(err, ErrPageFailed):
			metrics.RecordSyncItem(s.name, metrics.OutcomeUpstreamError)
			s.log(ctx).Error().Err(err).Str("session", sess.Session).Int("semester", sess.Semester).Msg("Failed to fetch students for session")
			continue
		default:
			s.failed(ctx, err).Str("session", sess.Session).Int("semester", sess.Semester).Msg("Failed to fetch students for session")
			continue
		}

		s.log(ctx).Info().
			Int("pages", stats.Pages).
			Int("records", stats.Records).
			Str("session", sess.Session).
			Int("semester", sess.Semester).
			Str("position", progress(i, len(sessions))).
			Msg("Finished students for session")
	}

	s.done(ctx)
	return nil
}

func (s *Students) storePage(ctx context.Context, sess models.AcademicSession, page []ttms.Student, offset int) {
	rows := make([]models.Student, 0, len(page))
	for _, rec := range page {
		row := models.Student{
			MatricNo:    rec.MatricNo,
			Name:        rec.Name,
			CourseCode:  rec.CourseCode,
			FacultyCode: rec.FacultyCode,
			IdentityNo:  rec.IdentityNo,
		}
		if row.IdentityNo == "" {
			row.IdentityNo = s.deps.Options.IdentitySentinel
		}
		if s.valid(ctx, &row, "student") {
			rows = append(rows, row)
		}
	}

	n, err := s.deps.Store.InsertStudents(ctx, rows)
	s.inserted(ctx, n, err)

	s.log(ctx).Info().
		Int("count", len(page)).
		Int64("inserted", n).
		Str("session", sess.Session).
		Int("semester", sess.Semester).
		Int("offset", offset).
		Msgf("Inserted %d student(s) for session %s %d offset %d", len(rows), sess.Session, sess.Semester, offset)
}
