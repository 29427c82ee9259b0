// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package sync

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/jadual/internal/config"
	"github.com/tomtom215/jadual/internal/metrics"
	"github.com/tomtom215/jadual/internal/models"
	"github.com/tomtom215/jadual/internal/models/ttms"
	"github.com/tomtom215/jadual/internal/upstream"
)

// Schedules mirrors the weekly slots of every stored course section
// (jadual_subjek). Venues that are not stored yet are inserted as
// placeholders so the slot can reference them.
type Schedules struct{ job }

// NewSchedules creates the schedules synchronizer.
func NewSchedules(deps Deps) *Schedules {
	return &Schedules{job{name: config.JobSchedules, deps: deps}}
}

func (s *Schedules) Run(ctx context.Context) error {
	sections, err := s.deps.Store.ListCourseSections(ctx, s.deps.Options.SchedulesOnlyMissing)
	if err != nil {
		return fmt.Errorf("list course sections: %w", err)
	}

	for i, cs := range sections {
		log := s.log(ctx).With().
			Str("session", cs.Session).
			Int("semester", cs.Semester).
			Str("course_code", cs.CourseCode).
			Str("section", cs.Section).
			Str("position", progress(i, len(sections))).
			Logger()

		if err := s.deps.wait(ctx, s.deps.Options.Delay); err != nil {
			return err
		}

		res, err := s.deps.Upstream.FetchCourseTimetable(ctx, upstream.TimetableQuery{
			Session:    cs.Session,
			Semester:   cs.Semester,
			CourseCode: cs.CourseCode,
			Section:    cs.Section,
		})
		if err != nil {
			if IsFatal(err) {
				return err
			}
			metrics.RecordSyncItem(s.name, metrics.OutcomeFailed)
			log.Error().Err(err).Msg("Failed to fetch course timetables for session")
			continue
		}
		metrics.RecordSyncItem(s.name, outcomeLabel(res.Outcome()))

		switch {
		case res.IsUpstreamError():
			log.Error().Err(res.Err()).Msg("Failed to fetch course timetables for session")
			continue
		case res.IsEmpty():
			log.Info().Msg("No course section schedules found")
			continue
		}

		records := res.Records()
		if records[0].Code == nil || *records[0].Code == "" {
			metrics.RecordSyncItem(s.name, metrics.OutcomeInvalid)
			log.Error().Msg("Invalid course section schedule found")
			continue
		}

		s.store(ctx, &log, cs, records)
	}

	s.done(ctx)
	return nil
}

// store maps, deduplicates and persists the slots of one section.
func (s *Schedules) store(ctx context.Context, log *zerolog.Logger, cs models.CourseSection, records []ttms.CourseTimetable) {
	rows := make([]models.Schedule, 0, len(records))
	for _, rec := range records {
		if row, ok := s.toRow(ctx, cs, rec); ok {
			rows = append(rows, row)
		}
	}
	rows = dedupeSchedules(rows)

	venues := s.placeholderVenues(ctx, records, rows)
	if len(venues) > 0 {
		n, err := s.deps.Store.InsertVenues(ctx, venues)
		s.inserted(ctx, n, err)
	}

	n, err := s.deps.Store.InsertSchedules(ctx, rows)
	s.inserted(ctx, n, err)

	log.Info().Int("count", len(records)).Int("unique", len(rows)).Int64("inserted", n).
		Msgf("Inserted %d course section schedule(s)", len(rows))
}

// toRow maps one slot. Session and semester come from the section being
// synced; the rest must be present on the record.
func (s *Schedules) toRow(ctx context.Context, cs models.CourseSection, rec ttms.CourseTimetable) (models.Schedule, bool) {
	if rec.Code == nil || rec.Section == nil || rec.Day == nil || rec.Time == nil {
		metrics.RecordSyncItem(s.name, metrics.OutcomeInvalid)
		s.log(ctx).Warn().Str("course_code", cs.CourseCode).Str("section", cs.Section).Msg("Dropping incomplete schedule slot")
		return models.Schedule{}, false
	}

	row := models.Schedule{
		Session:    cs.Session,
		Semester:   cs.Semester,
		CourseCode: *rec.Code,
		Section:    *rec.Section,
		Day:        models.Day(*rec.Day),
		Time:       models.TimeSlot(*rec.Time),
	}
	if rec.Room != nil && rec.Room.Code != "" {
		code := rec.Room.Code
		row.VenueCode = &code
	}
	return row, s.valid(ctx, &row, "schedule")
}

// placeholderVenues builds a capacity-0 venue for every room referenced by
// rows. A room that would not fit the venue table is unlinked instead.
func (s *Schedules) placeholderVenues(ctx context.Context, records []ttms.CourseTimetable, rows []models.Schedule) []models.Venue {
	rooms := make(map[string]ttms.TimetableRoom)
	for _, rec := range records {
		if rec.Room != nil && rec.Room.Code != "" {
			if _, seen := rooms[rec.Room.Code]; !seen {
				rooms[rec.Room.Code] = *rec.Room
			}
		}
	}

	var venues []models.Venue
	added := make(map[string]bool, len(rooms))
	for i := range rows {
		code := rows[i].VenueCode
		if code == nil {
			continue
		}
		if ok, seen := added[*code]; seen {
			if !ok {
				rows[i].VenueCode = nil
			}
			continue
		}
		room := rooms[*code]
		v := models.PlaceholderVenue(room.Code, room.Name, room.ShortName)
		ok := s.valid(ctx, &v, "venue")
		added[*code] = ok
		if !ok {
			rows[i].VenueCode = nil
			continue
		}
		venues = append(venues, v)
	}
	return venues
}
