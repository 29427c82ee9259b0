// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package models

import "time"

// AcademicSession is one semester of an academic year.
//
// Session is the "YYYY/YYYY" label; Semester is 1 or 2, with 3 for the
// short semester. (Session, Semester) is the primary key.
type AcademicSession struct {
	Session   string    `json:"session" validate:"required,academic_session"`
	Semester  int       `json:"semester" validate:"min=1,max=3"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Course is a subject offered in at least one session.
type Course struct {
	Code    string `json:"code" validate:"required,max=8"`
	Name    string `json:"name" validate:"max=100"`
	Credits int    `json:"credits" validate:"min=0,max=9"`
}

// CourseSection is one section of a course within a session/semester.
// LecturerNo is nil when no lecturer could be linked.
type CourseSection struct {
	Session    string `json:"session" validate:"required,academic_session"`
	Semester   int    `json:"semester" validate:"min=1,max=3"`
	CourseCode string `json:"course_code" validate:"required,max=8"`
	Section    string `json:"section" validate:"required,max=4"`
	LecturerNo *int64 `json:"lecturer_no,omitempty"`
}

// Lecturer is a teaching staff member keyed by worker number.
type Lecturer struct {
	WorkerNo int64  `json:"worker_no" validate:"gt=0"`
	Name     string `json:"name" validate:"required,max=100"`
}

// Schedule places a course section in one weekly slot.
// Every field except VenueCode is part of the primary key.
type Schedule struct {
	Session    string   `json:"session" validate:"required,academic_session"`
	Semester   int      `json:"semester" validate:"min=1,max=3"`
	CourseCode string   `json:"course_code" validate:"required,max=8"`
	Section    string   `json:"section" validate:"required,max=4"`
	Day        Day      `json:"day" validate:"min=1,max=7"`
	Time       TimeSlot `json:"time" validate:"min=1,max=11"`
	VenueCode  *string  `json:"venue_code,omitempty"`
}

// Venue is a room. Venues discovered through a schedule before the room
// listing has been synced are stored as placeholders with zero capacity and
// VenueTypeNone.
type Venue struct {
	Code      string    `json:"code" validate:"required,max=16"`
	Name      string    `json:"name" validate:"max=50"`
	ShortName string    `json:"short_name" validate:"max=8"`
	Capacity  int       `json:"capacity" validate:"min=0,max=65535"`
	Type      VenueType `json:"type"`
}

// PlaceholderVenue builds the row inserted when a schedule references a
// venue that is not stored yet.
func PlaceholderVenue(code, name, shortName string) Venue {
	return Venue{Code: code, Name: name, ShortName: shortName, Capacity: 0, Type: VenueTypeNone}
}

// Student is an enrolled student. IdentityNo holds the national ID (kp_no)
// or the configured sentinel when it is not known yet.
type Student struct {
	MatricNo    string `json:"matric_no" validate:"required,max=9"`
	Name        string `json:"name" validate:"required,max=100"`
	CourseCode  string `json:"course_code" validate:"max=8"`
	FacultyCode string `json:"faculty_code" validate:"max=8"`
	IdentityNo  string `json:"kp_no" validate:"required,max=12"`
}

// StudentRegisteredCourse records that a student took a section.
// All five fields form the primary key.
type StudentRegisteredCourse struct {
	MatricNo   string `json:"matric_no" validate:"required,max=9"`
	Session    string `json:"session" validate:"required,academic_session"`
	Semester   int    `json:"semester" validate:"min=1,max=3"`
	CourseCode string `json:"course_code" validate:"required,max=8"`
	Section    string `json:"section" validate:"required,max=4"`
}

// SectionKey identifies a course section without its lecturer.
type SectionKey struct {
	Session    string
	Semester   int
	CourseCode string
	Section    string
}

// Key returns the section identity of a CourseSection.
func (c CourseSection) Key() SectionKey {
	return SectionKey{Session: c.Session, Semester: c.Semester, CourseCode: c.CourseCode, Section: c.Section}
}

// Registration is the session/section part of a StudentRegisteredCourse,
// used to pick a roster to search for a student's national ID.
type Registration struct {
	Session    string
	Semester   int
	CourseCode string
	Section    string
}
