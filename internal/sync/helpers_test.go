// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/jadual/internal/models"
	"github.com/tomtom215/jadual/internal/session"
)

func TestDeriveCredits(t *testing.T) {
	tests := map[string]int{
		"SECJ3104": 4,
		"SCSJ1013": 3,
		"UHAS1172": 2,
		"SECJ3100": 0,
		"XSCJ":     0,
		"":         0,
	}
	for code, want := range tests {
		if got := deriveCredits(code); got != want {
			t.Errorf("deriveCredits(%q) = %d, want %d", code, got, want)
		}
	}
}

func TestSessionBefore(t *testing.T) {
	tests := []struct {
		session, floor string
		want           bool
	}{
		{"2005/2006", "2006/2007", true},
		{"2006/2007", "2006/2007", false},
		{"2023/2024", "2006/2007", false},
		{"2006/2007", "2007/2008", true},
		{"2005/2006", "", false},
	}
	for _, tt := range tests {
		if got := sessionBefore(tt.session, tt.floor); got != tt.want {
			t.Errorf("sessionBefore(%q, %q) = %v, want %v", tt.session, tt.floor, got, tt.want)
		}
	}
}

func TestDedupeSchedules_FirstOccurrenceWins(t *testing.T) {
	bk1, bk2 := "N28-BK1", "N28-BK2"
	rows := []models.Schedule{
		{Session: "2023/2024", Semester: 1, CourseCode: "SECJ3104", Section: "01", Day: models.Monday, Time: 3, VenueCode: &bk1},
		{Session: "2023/2024", Semester: 1, CourseCode: "SECJ3104", Section: "01", Day: models.Monday, Time: 4, VenueCode: &bk1},
		{Session: "2023/2024", Semester: 1, CourseCode: "SECJ3104", Section: "01", Day: models.Monday, Time: 3, VenueCode: &bk2},
		{Session: "2023/2024", Semester: 1, CourseCode: "SECJ3104", Section: "02", Day: models.Monday, Time: 3, VenueCode: &bk2},
	}

	got := dedupeSchedules(rows)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if *got[0].VenueCode != bk1 {
		t.Errorf("kept venue %q, want first occurrence %q", *got[0].VenueCode, bk1)
	}
	if got[2].Section != "02" {
		t.Errorf("order not preserved: %+v", got)
	}
	if len(rows) != 4 || *rows[2].VenueCode != bk2 {
		t.Error("input slice was modified")
	}
}

func TestParseSessionDate(t *testing.T) {
	want := time.Date(2023, 10, 8, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2023-10-08", "2023-10-08 00:00:00", "08/10/2023", "08-10-2023", "8 October 2023", "08-Oct-2023", " 2023-10-08 "} {
		got, err := parseSessionDate(in)
		if err != nil {
			t.Errorf("parseSessionDate(%q): %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("parseSessionDate(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := parseSessionDate("next monday"); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestProgress(t *testing.T) {
	if got := progress(0, 12); got != "(1/12)" {
		t.Errorf("progress = %q", got)
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{session.ErrAuthentication, true},
		{errors.Join(errors.New("x"), session.ErrRetryBudgetExhausted), true},
		{context.Canceled, true},
		{context.DeadlineExceeded, true},
		{ErrPageFailed, false},
		{errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		if got := IsFatal(tt.err); got != tt.want {
			t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if err := Sleep(context.Background(), 0); err != nil {
		t.Errorf("zero sleep: %v", err)
	}
}
