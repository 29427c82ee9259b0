// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package sync

import (
	"context"
	"testing"

	"github.com/tomtom215/jadual/internal/config"
	"github.com/tomtom215/jadual/internal/database"
	"github.com/tomtom215/jadual/internal/models"
	"github.com/tomtom215/jadual/internal/models/ttms"
	"github.com/tomtom215/jadual/internal/upstream"
)

func newDuckDBStore(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{
		Driver:    config.DriverDuckDB,
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   1,
	})
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countRows(t *testing.T, db *database.DB, tables ...string) map[string]int64 {
	t.Helper()
	out := make(map[string]int64, len(tables))
	for _, table := range tables {
		n, err := db.CountRows(context.Background(), table)
		if err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		out[table] = n
	}
	return out
}

func TestSchedules_RunTwiceKeepsRowCounts(t *testing.T) {
	db := newDuckDBStore(t)
	ctx := context.Background()

	if _, err := db.InsertSessions(ctx, []models.AcademicSession{academicSession("2023/2024", 1)}); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	if _, err := db.InsertCourses(ctx, []models.Course{{Code: "SECJ3104", Name: "APPLICATIONS DEVELOPMENT", Credits: 4}}); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	if _, err := db.InsertCourseSections(ctx, []models.CourseSection{
		{Session: "2023/2024", Semester: 1, CourseCode: "SECJ3104", Section: "01"},
	}); err != nil {
		t.Fatalf("seed section: %v", err)
	}

	api := newFakeAPI()
	api.timetable = func(upstream.TimetableQuery) (upstream.Result[ttms.CourseTimetable], error) {
		return upstream.Ok([]ttms.CourseTimetable{
			timetableRow("SECJ3104", "01", 2, 3, "N28-BK1"),
			timetableRow("SECJ3104", "01", 2, 4, "N28-BK1"),
			timetableRow("SECJ3104", "01", 4, 7, ""),
		}), nil
	}

	deps := Deps{Store: db, Upstream: api, Options: testOptions(), Sleep: noSleep}
	tables := []string{database.TableVenue, database.TableCourseSectionSchedule}

	if err := NewSchedules(deps).Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := countRows(t, db, tables...)
	if first[database.TableCourseSectionSchedule] != 3 || first[database.TableVenue] != 1 {
		t.Fatalf("after first run = %v, want 3 schedules and 1 venue", first)
	}

	if err := NewSchedules(deps).Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second := countRows(t, db, tables...)
	for _, table := range tables {
		if second[table] != first[table] {
			t.Errorf("%s rows = %d after second run, want %d", table, second[table], first[table])
		}
	}
	if api.calls[upstream.EntityTimetable] != 2 {
		t.Errorf("timetable calls = %d, want 2", api.calls[upstream.EntityTimetable])
	}
}
