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

// CourseSections mirrors the sections of every course (subjek_seksyen) and
// links each section to its lecturer.
//
// subjek_seksyen names the lecturer instead of giving a worker number, so
// the lecturers teaching in the same session/semester are fetched once per
// session (elevated), stored if absent, and matched by exact name. The first
// lecturer with a given name wins; no match leaves the link NULL.
type CourseSections struct{ job }

// NewCourseSections creates the course-sections synchronizer.
func NewCourseSections(deps Deps) *CourseSections {
	return &CourseSections{job{name: config.JobCourseSections, deps: deps}}
}

func (c *CourseSections) Run(ctx context.Context) error {
	sessions, err := c.deps.Store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	for i, sess := range sessions {
		if sessionBefore(sess.Session, c.deps.Options.CourseFloor) {
			metrics.RecordSyncItem(c.name, metrics.OutcomeSkipped)
			continue
		}
		if err := c.syncSession(ctx, sess, progress(i, len(sessions))); err != nil {
			return err
		}
	}

	c.done(ctx)
	return nil
}

// syncSession handles one session. Only fatal errors are returned.
func (c *CourseSections) syncSession(ctx context.Context, sess models.AcademicSession, position string) error {
	log := c.log(ctx).With().Str("session", sess.Session).Int("semester", sess.Semester).Str("position", position).Logger()

	if err := c.deps.wait(ctx, c.deps.Options.Delay); err != nil {
		return err
	}

	res, err := c.deps.Upstream.FetchCourseSections(ctx, sess.Session, sess.Semester)
	if err != nil {
		if IsFatal(err) {
			return err
		}
		c.failed(ctx, err).Str("session", sess.Session).Int("semester", sess.Semester).Msg("Failed to fetch course sections for session")
		return nil
	}
	metrics.RecordSyncItem(c.name, outcomeLabel(res.Outcome()))
	if res.IsUpstreamError() {
		log.Error().Err(res.Err()).Msg("Failed to fetch course sections for session")
		return nil
	}

	var lecturers map[string]int64
	if hasLecturerNames(res.Records()) {
		lecturers, err = c.sessionLecturers(ctx, sess)
		if err != nil {
			return err
		}
	}

	var rows []models.CourseSection
	for _, course := range res.Records() {
		for _, sec := range course.Sections {
			row := models.CourseSection{
				Session:    sess.Session,
				Semester:   sess.Semester,
				CourseCode: course.Code,
				Section:    sec.Section,
				LecturerNo: linkLecturer(lecturers, sec.Lecturer),
			}
			if c.valid(ctx, &row, "course section") {
				rows = append(rows, row)
			}
		}
	}

	n, err := c.deps.Store.InsertCourseSections(ctx, rows)
	c.inserted(ctx, n, err)

	log.Info().Int("count", len(res.Records())).Int64("inserted", n).
		Msgf("Inserted %d course section(s) for session %s %d", len(rows), sess.Session, sess.Semester)
	return nil
}

// sessionLecturers fetches and stores the lecturers of one session and
// returns them indexed by name. A missing lecturer list is not an error:
// every link of the session degrades to NULL.
func (c *CourseSections) sessionLecturers(ctx context.Context, sess models.AcademicSession) (map[string]int64, error) {
	if err := c.deps.wait(ctx, c.deps.Options.Delay); err != nil {
		return nil, err
	}

	res, err := session.Fetch(ctx, c.deps.Session, func(ctx context.Context, sessionID string) (upstream.Result[ttms.Lecturer], error) {
		return c.deps.Upstream.FetchLecturers(ctx, sessionID, sess.Session, sess.Semester)
	})
	if err != nil {
		if IsFatal(err) {
			return nil, err
		}
		c.log(ctx).Warn().Err(err).Str("session", sess.Session).Int("semester", sess.Semester).Msg("Lecturers unavailable, sections stored without lecturer")
		return nil, nil
	}
	if !res.IsOK() {
		c.log(ctx).Warn().Err(res.Err()).Str("session", sess.Session).Int("semester", sess.Semester).Str("outcome", res.Outcome().String()).Msg("Lecturers unavailable, sections stored without lecturer")
		return nil, nil
	}

	rows := make([]models.Lecturer, 0, len(res.Records()))
	for _, rec := range res.Records() {
		row := models.Lecturer{WorkerNo: rec.WorkerNo, Name: rec.Name}
		if c.valid(ctx, &row, "lecturer") {
			rows = append(rows, row)
		}
	}

	// stored first: course_section.lecturer_no references lecturer
	n, err := c.deps.Store.InsertLecturers(ctx, rows)
	c.inserted(ctx, n, err)

	return indexLecturers(rows), nil
}

// indexLecturers maps lecturer name to worker number. Names are not unique;
// the first occurrence wins.
func indexLecturers(rows []models.Lecturer) map[string]int64 {
	idx := make(map[string]int64, len(rows))
	for _, l := range rows {
		if _, seen := idx[l.Name]; !seen {
			idx[l.Name] = l.WorkerNo
		}
	}
	return idx
}

// linkLecturer resolves a section's lecturer name by exact match.
func linkLecturer(idx map[string]int64, name *string) *int64 {
	if name == nil || *name == "" {
		return nil
	}
	no, ok := idx[*name]
	if !ok {
		return nil
	}
	return &no
}

func hasLecturerNames(courses []ttms.CourseSection) bool {
	for _, c := range courses {
		for _, s := range c.Sections {
			if s.Lecturer != nil && *s.Lecturer != "" {
				return true
			}
		}
	}
	return false
}
