// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package sync

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/jadual/internal/metrics"
	"github.com/tomtom215/jadual/internal/models"
	"github.com/tomtom215/jadual/internal/upstream"
)

// deriveCredits reads the credit count from the last character of a course
// code: SECJ3104 is a 4-credit course. A non-digit yields 0.
func deriveCredits(code string) int {
	if code == "" {
		return 0
	}
	last := code[len(code)-1]
	if last < '0' || last > '9' {
		return 0
	}
	return int(last - '0')
}

// sessionStartYear returns the first year of a "YYYY/YYYY" label.
func sessionStartYear(label string) (int, bool) {
	head, _, ok := strings.Cut(label, "/")
	if !ok {
		return 0, false
	}
	year, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return year, true
}

// sessionBefore reports whether session label a is strictly earlier than b.
// An empty floor never skips anything.
func sessionBefore(a, floor string) bool {
	if floor == "" {
		return false
	}
	ya, okA := sessionStartYear(a)
	yf, okF := sessionStartYear(floor)
	if okA && okF {
		return ya < yf
	}
	return a < floor
}

type scheduleKey struct {
	courseCode string
	section    string
	day        models.Day
	time       models.TimeSlot
}

// dedupeSchedules drops repeated (course, section, day, time) slots, keeping
// the first occurrence. Upstream sometimes lists a section clashing with
// itself; the venue is not part of the key.
func dedupeSchedules(rows []models.Schedule) []models.Schedule {
	seen := make(map[scheduleKey]struct{}, len(rows))
	out := rows[:0:0]
	for _, r := range rows {
		k := scheduleKey{courseCode: r.CourseCode, section: r.Section, day: r.Day, time: r.Time}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// sessionDateLayouts are the formats seen in tarikh_mula/tarikh_tamat.
var sessionDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02-01-2006",
	"2 January 2006",
	"02-Jan-2006",
}

// parseSessionDate parses an upstream session boundary date as UTC.
func parseSessionDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range sessionDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// progress renders the 1-based "(i/total)" position of an item.
func progress(i, total int) string {
	return fmt.Sprintf("(%d/%d)", i+1, total)
}

// outcomeLabel maps a Result outcome to its metrics label.
func outcomeLabel(o upstream.Outcome) string {
	switch o {
	case upstream.OutcomeOK:
		return metrics.OutcomeOK
	case upstream.OutcomeEmpty:
		return metrics.OutcomeEmpty
	default:
		return metrics.OutcomeUpstreamError
	}
}
