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

// Registrations mirrors every stored student's course history
// (pelajar_subjek). The public entity is keyed by matric number and returns
// all sessions at once.
type Registrations struct{ job }

// NewRegistrations creates the student-registrations synchronizer.
func NewRegistrations(deps Deps) *Registrations {
	return &Registrations{job{name: config.JobRegistrations, deps: deps}}
}

func (r *Registrations) Run(ctx context.Context) error {
	matrics, err := r.deps.Store.ListStudentMatrics(ctx)
	if err != nil {
		return fmt.Errorf("list students: %w", err)
	}

	for i, matric := range matrics {
		if err := r.deps.wait(ctx, r.deps.Options.HeavyDelay); err != nil {
			return err
		}

		res, err := r.deps.Upstream.FetchStudentCourses(ctx, matric)
		if err != nil {
			if IsFatal(err) {
				return err
			}
			r.failed(ctx, err).Str("matric_no", matric).Msg("Failed to fetch courses for student")
			continue
		}
		metrics.RecordSyncItem(r.name, outcomeLabel(res.Outcome()))
		if res.IsUpstreamError() {
			r.log(ctx).Error().Err(res.Err()).Str("matric_no", matric).Msg("Failed to fetch courses for student")
			continue
		}

		rows := make([]models.StudentRegisteredCourse, 0, len(res.Records()))
		for _, rec := range res.Records() {
			// the record's own matric is not trusted; key by the student asked for
			row := models.StudentRegisteredCourse{
				MatricNo:   matric,
				Session:    rec.Session,
				Semester:   rec.Semester,
				CourseCode: rec.Code,
				Section:    rec.Section,
			}
			if r.valid(ctx, &row, "registration") {
				rows = append(rows, row)
			}
		}

		n, err := r.deps.Store.InsertRegistrations(ctx, rows)
		r.inserted(ctx, n, err)

		r.log(ctx).Info().
			Int("count", len(res.Records())).
			Int64("inserted", n).
			Str("matric_no", matric).
			Str("position", progress(i, len(matrics))).
			Msgf("Inserted %d course(s) for student %s %s", len(rows), matric, progress(i, len(matrics)))
	}

	r.done(ctx)
	return nil
}
