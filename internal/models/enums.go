// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package models

import "fmt"

// Day is the weekday of a schedule slot, 1 = Sunday through 7 = Saturday.
type Day int

const (
	Sunday Day = iota + 1
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var dayNames = [...]string{"", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Valid reports whether d is within 1..7.
func (d Day) Valid() bool {
	return d >= Sunday && d <= Saturday
}

func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

// TimeSlot is the hour of a schedule slot. Slot 1 is 07:00-07:50 and each
// following slot starts one hour later, up to slot 11 at 17:00-17:50.
type TimeSlot int

const (
	FirstTimeSlot TimeSlot = 1
	LastTimeSlot  TimeSlot = 11
)

// Valid reports whether t is within 1..11.
func (t TimeSlot) Valid() bool {
	return t >= FirstTimeSlot && t <= LastTimeSlot
}

// StartHour returns the 24-hour clock hour the slot begins at.
func (t TimeSlot) StartHour() int {
	return 6 + int(t)
}

func (t TimeSlot) String() string {
	if !t.Valid() {
		return fmt.Sprintf("TimeSlot(%d)", int(t))
	}
	return fmt.Sprintf("%02d:00-%02d:50", t.StartHour(), t.StartHour())
}

// VenueType classifies a room. Stored as a small integer.
type VenueType int

const (
	VenueTypeNone VenueType = iota
	VenueTypeLaboratory
	VenueTypeLectureRoom
)

// Upstream jenis values.
const (
	jenisLaboratory  = "Makmal"
	jenisLectureRoom = "Bilik Kuliah"
)

// VenueTypeFromJenis maps the upstream room category. Unknown values,
// including "-", map to VenueTypeNone.
func VenueTypeFromJenis(jenis string) VenueType {
	switch jenis {
	case jenisLaboratory:
		return VenueTypeLaboratory
	case jenisLectureRoom:
		return VenueTypeLectureRoom
	default:
		return VenueTypeNone
	}
}

func (v VenueType) String() string {
	switch v {
	case VenueTypeLaboratory:
		return "laboratory"
	case VenueTypeLectureRoom:
		return "lectureRoom"
	default:
		return "none"
	}
}
