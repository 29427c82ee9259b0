// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

/*
Package models defines the rows jadual-sync writes and the responses of its
operations endpoint.

Store Models:

  - AcademicSession, Course, CourseSection, Lecturer, Schedule, Venue,
    Student, StudentRegisteredCourse: one struct per table, keyed by the
    table's natural composite key
  - Day, TimeSlot, VenueType: small enums stored as integers

Store models carry go-playground/validator tags. Synchronizers validate
every mapped row and drop the ones that fail, so a malformed upstream
record never reaches the database.

Upstream wire records live in the ttms subpackage and keep the upstream
field names in their json tags.

API Models:

  - APIResponse: envelope of every /healthz and /status answer
*/
package models
