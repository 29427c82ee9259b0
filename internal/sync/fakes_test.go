// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package sync

import (
	"context"
	"time"

	"github.com/tomtom215/jadual/internal/models"
	"github.com/tomtom215/jadual/internal/models/ttms"
	"github.com/tomtom215/jadual/internal/session"
	"github.com/tomtom215/jadual/internal/upstream"
)

// fakeAPI answers every entity through an optional hook; an unset hook
// answers Empty. calls counts requests per entity name.
type fakeAPI struct {
	calls map[string]int

	loginErr error

	sessions       func() (upstream.Result[ttms.Session], error)
	courses        func(session string, semester int) (upstream.Result[ttms.Course], error)
	courseSections func(session string, semester int) (upstream.Result[ttms.CourseSection], error)
	timetable      func(q upstream.TimetableQuery) (upstream.Result[ttms.CourseTimetable], error)
	studentCourses func(matric string) (upstream.Result[ttms.SessionCourse], error)
	rooms          func(faculty, filter string) (upstream.Result[ttms.FacultyRoom], error)
	students       func(q upstream.StudentQuery) (upstream.Result[ttms.Student], error)
	lecturers      func(session string, semester int) (upstream.Result[ttms.Lecturer], error)
	sectionStudent func(q upstream.SectionQuery) (upstream.Result[ttms.SectionStudent], error)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string]int)}
}

func (f *fakeAPI) total() int {
	n := 0
	for entity, c := range f.calls {
		if entity != upstream.EntityAuthentication && entity != upstream.EntityElevation {
			n += c
		}
	}
	return n
}

func (f *fakeAPI) Login(_ context.Context, login, _ string) (upstream.Result[ttms.Authentication], error) {
	f.calls[upstream.EntityAuthentication]++
	if f.loginErr != nil {
		return upstream.Result[ttms.Authentication]{}, f.loginErr
	}
	return upstream.Ok([]ttms.Authentication{{SessionID: "base", LoginName: login}}), nil
}

func (f *fakeAPI) ElevateSession(_ context.Context, sessionID string) (upstream.Result[ttms.Elevation], error) {
	f.calls[upstream.EntityElevation]++
	return upstream.Ok([]ttms.Elevation{{SessionID: "admin-" + sessionID}}), nil
}

func (f *fakeAPI) FetchSessions(context.Context) (upstream.Result[ttms.Session], error) {
	f.calls[upstream.EntitySessions]++
	if f.sessions == nil {
		return upstream.Empty[ttms.Session](), nil
	}
	return f.sessions()
}

func (f *fakeAPI) FetchCourses(_ context.Context, session string, semester int) (upstream.Result[ttms.Course], error) {
	f.calls[upstream.EntityCourses]++
	if f.courses == nil {
		return upstream.Empty[ttms.Course](), nil
	}
	return f.courses(session, semester)
}

func (f *fakeAPI) FetchCourseSections(_ context.Context, session string, semester int) (upstream.Result[ttms.CourseSection], error) {
	f.calls[upstream.EntityCourseSections]++
	if f.courseSections == nil {
		return upstream.Empty[ttms.CourseSection](), nil
	}
	return f.courseSections(session, semester)
}

func (f *fakeAPI) FetchCourseTimetable(_ context.Context, q upstream.TimetableQuery) (upstream.Result[ttms.CourseTimetable], error) {
	f.calls[upstream.EntityTimetable]++
	if f.timetable == nil {
		return upstream.Empty[ttms.CourseTimetable](), nil
	}
	return f.timetable(q)
}

func (f *fakeAPI) FetchStudentCourses(_ context.Context, matric string) (upstream.Result[ttms.SessionCourse], error) {
	f.calls[upstream.EntityStudentCourses]++
	if f.studentCourses == nil {
		return upstream.Empty[ttms.SessionCourse](), nil
	}
	return f.studentCourses(matric)
}

func (f *fakeAPI) FetchRooms(_ context.Context, faculty, filter string) (upstream.Result[ttms.FacultyRoom], error) {
	f.calls[upstream.EntityRooms]++
	if f.rooms == nil {
		return upstream.Empty[ttms.FacultyRoom](), nil
	}
	return f.rooms(faculty, filter)
}

func (f *fakeAPI) FetchStudents(_ context.Context, _ string, q upstream.StudentQuery) (upstream.Result[ttms.Student], error) {
	f.calls[upstream.EntityStudents]++
	if f.students == nil {
		return upstream.Empty[ttms.Student](), nil
	}
	return f.students(q)
}

func (f *fakeAPI) FetchLecturers(_ context.Context, _ string, session string, semester int) (upstream.Result[ttms.Lecturer], error) {
	f.calls[upstream.EntityLecturers]++
	if f.lecturers == nil {
		return upstream.Empty[ttms.Lecturer](), nil
	}
	return f.lecturers(session, semester)
}

func (f *fakeAPI) FetchSectionStudents(_ context.Context, _ string, q upstream.SectionQuery) (upstream.Result[ttms.SectionStudent], error) {
	f.calls[upstream.EntitySectionRoster]++
	if f.sectionStudent == nil {
		return upstream.Empty[ttms.SectionStudent](), nil
	}
	return f.sectionStudent(q)
}

// fakeStore keeps every insert in memory and serves preset reference sets.
type fakeStore struct {
	sessions        []models.AcademicSession
	sections        []models.CourseSection
	matrics         []string
	missingIdentity []models.Student
	registrations   map[string]models.Registration

	listErr error

	insertedSessions      []models.AcademicSession
	insertedCourses       []models.Course
	insertedLecturers     []models.Lecturer
	insertedSections      []models.CourseSection
	insertedVenues        []models.Venue
	insertedSchedules     []models.Schedule
	insertedStudents      []models.Student
	insertedRegistrations []models.StudentRegisteredCourse
	identityUpdates       map[string]string

	onlyUnscheduled bool
}

func (s *fakeStore) ListSessions(context.Context) ([]models.AcademicSession, error) {
	return s.sessions, s.listErr
}

func (s *fakeStore) ListCourseSections(_ context.Context, onlyUnscheduled bool) ([]models.CourseSection, error) {
	s.onlyUnscheduled = onlyUnscheduled
	return s.sections, s.listErr
}

func (s *fakeStore) ListStudentMatrics(context.Context) ([]string, error) {
	return s.matrics, s.listErr
}

func (s *fakeStore) ListStudentsMissingIdentity(context.Context, string) ([]models.Student, error) {
	return s.missingIdentity, s.listErr
}

func (s *fakeStore) FirstRegistration(_ context.Context, matric string) (models.Registration, bool, error) {
	reg, ok := s.registrations[matric]
	return reg, ok, nil
}

func (s *fakeStore) InsertSessions(_ context.Context, rows []models.AcademicSession) (int64, error) {
	s.insertedSessions = append(s.insertedSessions, rows...)
	return int64(len(rows)), nil
}

func (s *fakeStore) InsertCourses(_ context.Context, rows []models.Course) (int64, error) {
	s.insertedCourses = append(s.insertedCourses, rows...)
	return int64(len(rows)), nil
}

func (s *fakeStore) InsertLecturers(_ context.Context, rows []models.Lecturer) (int64, error) {
	s.insertedLecturers = append(s.insertedLecturers, rows...)
	return int64(len(rows)), nil
}

func (s *fakeStore) InsertCourseSections(_ context.Context, rows []models.CourseSection) (int64, error) {
	s.insertedSections = append(s.insertedSections, rows...)
	return int64(len(rows)), nil
}

func (s *fakeStore) InsertVenues(_ context.Context, rows []models.Venue) (int64, error) {
	s.insertedVenues = append(s.insertedVenues, rows...)
	return int64(len(rows)), nil
}

func (s *fakeStore) InsertSchedules(_ context.Context, rows []models.Schedule) (int64, error) {
	s.insertedSchedules = append(s.insertedSchedules, rows...)
	return int64(len(rows)), nil
}

func (s *fakeStore) InsertStudents(_ context.Context, rows []models.Student) (int64, error) {
	s.insertedStudents = append(s.insertedStudents, rows...)
	return int64(len(rows)), nil
}

func (s *fakeStore) InsertRegistrations(_ context.Context, rows []models.StudentRegisteredCourse) (int64, error) {
	s.insertedRegistrations = append(s.insertedRegistrations, rows...)
	return int64(len(rows)), nil
}

func (s *fakeStore) UpdateStudentIdentity(_ context.Context, name, id, _ string) (int64, error) {
	if s.identityUpdates == nil {
		s.identityUpdates = make(map[string]string)
	}
	s.identityUpdates[name] = id
	return 1, nil
}

func testOptions() Options {
	return Options{
		StudentPageSize:  50,
		CourseFloor:      "2006/2007",
		StudentFloor:     "2007/2008",
		VenueFaculty:     "FSKSM",
		IdentitySentinel: "-",
	}
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

// newTestDeps wires a fake store and API with no delays.
func newTestDeps(store *fakeStore, api *fakeAPI) Deps {
	return Deps{
		Store:    store,
		Upstream: api,
		Session:  session.NewManager(api, session.Credentials{Login: "A12CS0001", Password: "pw"}, 3),
		Options:  testOptions(),
		Sleep:    noSleep,
	}
}

func academicSession(label string, semester int) models.AcademicSession {
	return models.AcademicSession{
		Session:   label,
		Semester:  semester,
		StartDate: time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func ptr[T any](v T) *T { return &v }

var _ Store = (*fakeStore)(nil)
var _ upstream.API = (*fakeAPI)(nil)
