// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package sync

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/jadual/internal/config"
	"github.com/tomtom215/jadual/internal/models"
	"github.com/tomtom215/jadual/internal/session"
	"github.com/tomtom215/jadual/internal/upstream"
)

// Synchronizer is one entity job of the pipeline.
//
// Run returns nil when every item was attempted, even if some items failed.
// A non-nil error means the job could not continue; IsFatal tells whether
// the whole run must stop.
type Synchronizer interface {
	Name() string
	Run(ctx context.Context) error
}

// Store is the part of the persistence gateway the synchronizers use.
// *database.DB implements it.
type Store interface {
	ListSessions(ctx context.Context) ([]models.AcademicSession, error)
	ListCourseSections(ctx context.Context, onlyUnscheduled bool) ([]models.CourseSection, error)
	ListStudentMatrics(ctx context.Context) ([]string, error)
	ListStudentsMissingIdentity(ctx context.Context, sentinel string) ([]models.Student, error)
	FirstRegistration(ctx context.Context, matricNo string) (models.Registration, bool, error)

	InsertSessions(ctx context.Context, rows []models.AcademicSession) (int64, error)
	InsertCourses(ctx context.Context, rows []models.Course) (int64, error)
	InsertLecturers(ctx context.Context, rows []models.Lecturer) (int64, error)
	InsertCourseSections(ctx context.Context, rows []models.CourseSection) (int64, error)
	InsertVenues(ctx context.Context, rows []models.Venue) (int64, error)
	InsertSchedules(ctx context.Context, rows []models.Schedule) (int64, error)
	InsertStudents(ctx context.Context, rows []models.Student) (int64, error)
	InsertRegistrations(ctx context.Context, rows []models.StudentRegisteredCourse) (int64, error)

	UpdateStudentIdentity(ctx context.Context, name, identityNo, sentinel string) (int64, error)
}

// Options are the tunables shared by all synchronizers.
type Options struct {
	Delay           time.Duration
	HeavyDelay      time.Duration
	StudentPageSize int

	CourseFloor  string
	StudentFloor string

	VenueFaculty    string
	VenueRoomFilter string

	IdentitySentinel     string
	SchedulesOnlyMissing bool
}

// OptionsFromConfig copies the sync section of the configuration.
func OptionsFromConfig(cfg config.SyncConfig) Options {
	return Options{
		Delay:                cfg.Delay,
		HeavyDelay:           cfg.HeavyDelay,
		StudentPageSize:      cfg.StudentPageSize,
		CourseFloor:          cfg.CourseFloor,
		StudentFloor:         cfg.StudentFloor,
		VenueFaculty:         cfg.VenueFaculty,
		VenueRoomFilter:      cfg.VenueRoomFilter,
		IdentitySentinel:     cfg.IdentitySentinel,
		SchedulesOnlyMissing: cfg.SchedulesOnlyMissing,
	}
}

// Deps wires a synchronizer to its collaborators.
type Deps struct {
	Store    Store
	Upstream upstream.API
	Session  *session.Manager
	Options  Options

	// Sleep waits between upstream calls. Nil means Sleep.
	Sleep SleepFunc
}

func (d Deps) wait(ctx context.Context, delay time.Duration) error {
	if d.Sleep != nil {
		return d.Sleep(ctx, delay)
	}
	return Sleep(ctx, delay)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is a cancellable time.Sleep.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsFatal reports whether err must abort the whole pipeline run.
func IsFatal(err error) bool {
	return errors.Is(err, session.ErrAuthentication) ||
		errors.Is(err, session.ErrRetryBudgetExhausted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
