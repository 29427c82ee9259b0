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
)

// Courses mirrors the subjects offered in every stored session (subjek).
// Sessions before the course floor have no course data and are skipped
// without calling upstream.
type Courses struct{ job }

// NewCourses creates the courses synchronizer.
func NewCourses(deps Deps) *Courses {
	return &Courses{job{name: config.JobCourses, deps: deps}}
}

func (c *Courses) Run(ctx context.Context) error {
	sessions, err := c.deps.Store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	for i, sess := range sessions {
		if sessionBefore(sess.Session, c.deps.Options.CourseFloor) {
			metrics.RecordSyncItem(c.name, metrics.OutcomeSkipped)
			continue
		}

		if err := c.deps.wait(ctx, c.deps.Options.Delay); err != nil {
			return err
		}

		res, err := c.deps.Upstream.FetchCourses(ctx, sess.Session, sess.Semester)
		if err != nil {
			if IsFatal(err) {
				return err
			}
			c.failed(ctx, err).Str("session", sess.Session).Int("semester", sess.Semester).Msg("Failed to fetch courses for session")
			continue
		}
		metrics.RecordSyncItem(c.name, outcomeLabel(res.Outcome()))
		if res.IsUpstreamError() {
			c.log(ctx).Error().Err(res.Err()).Str("session", sess.Session).Int("semester", sess.Semester).Msg("Failed to fetch courses for session")
			continue
		}

		rows := make([]models.Course, 0, len(res.Records()))
		for _, rec := range res.Records() {
			if !c.valid(ctx, &rec, "course") {
				continue
			}
			row := models.Course{Code: rec.Code, Name: rec.Name, Credits: deriveCredits(rec.Code)}
			if c.valid(ctx, &row, "course") {
				rows = append(rows, row)
			}
		}

		n, err := c.deps.Store.InsertCourses(ctx, rows)
		c.inserted(ctx, n, err)

		c.log(ctx).Info().
			Int("count", len(res.Records())).
			Int64("inserted", n).
			Str("session", sess.Session).
			Int("semester", sess.Semester).
			Str("position", progress(i, len(sessions))).
			Msgf("Inserted %d course(s) for session %s %d", len(rows), sess.Session, sess.Semester)
	}

	c.done(ctx)
	return nil
}
