// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package models

import "testing"

func TestVenueTypeFromJenis(t *testing.T) {
	tests := []struct {
		jenis string
		want  VenueType
	}{
		{"Makmal", VenueTypeLaboratory},
		{"Bilik Kuliah", VenueTypeLectureRoom},
		{"-", VenueTypeNone},
		{"", VenueTypeNone},
		{"Dewan", VenueTypeNone},
	}
	for _, tt := range tests {
		t.Run(tt.jenis, func(t *testing.T) {
			if got := VenueTypeFromJenis(tt.jenis); got != tt.want {
				t.Errorf("VenueTypeFromJenis(%q) = %v, want %v", tt.jenis, got, tt.want)
			}
		})
	}
}

func TestDayAndTimeSlot(t *testing.T) {
	if !Sunday.Valid() || !Saturday.Valid() || Day(0).Valid() || Day(8).Valid() {
		t.Error("Day.Valid bounds are wrong")
	}
	if Saturday != 7 {
		t.Errorf("Saturday = %d, want 7", Saturday)
	}
	if Monday.String() != "Monday" {
		t.Errorf("Monday.String() = %q", Monday.String())
	}

	if TimeSlot(0).Valid() || TimeSlot(12).Valid() || !TimeSlot(11).Valid() {
		t.Error("TimeSlot.Valid bounds are wrong")
	}
	if got := TimeSlot(1).String(); got != "07:00-07:50" {
		t.Errorf("TimeSlot(1) = %q, want 07:00-07:50", got)
	}
	if got := TimeSlot(11).String(); got != "17:00-17:50" {
		t.Errorf("TimeSlot(11) = %q, want 17:00-17:50", got)
	}
}

func TestPlaceholderVenue(t *testing.T) {
	v := PlaceholderVenue("N28-BK1", "Bilik Kuliah 1", "BK1")
	if v.Capacity != 0 || v.Type != VenueTypeNone {
		t.Errorf("placeholder = %+v, want capacity 0 and type none", v)
	}
}
