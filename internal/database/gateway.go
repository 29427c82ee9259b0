// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/jadual/internal/metrics"
	"github.com/tomtom215/jadual/internal/models"
)

// insertRows inserts rows one statement at a time, skipping primary key
// conflicts. It returns the number of rows actually inserted. A failing row
// (for example a foreign key miss) is joined into the returned error and
// the remaining rows are still attempted. Cancellation stops the batch.
func insertRows[T any](ctx context.Context, db *DB, table string, columns []string, rows []T, args func(T) []any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	start := time.Now()
	stmt, err := db.conn.PrepareContext(ctx, db.dialect.insertIgnore(table, columns))
	if err != nil {
		metrics.RecordDBQuery("insert", table, time.Since(start), err)
		return 0, fmt.Errorf("prepare insert into %s: %w", table, err)
	}
	defer closeWithLog(stmt, "prepared statement")

	var inserted int64
	var errs []error
	for i, row := range rows {
		res, err := stmt.ExecContext(ctx, args(row)...)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				errs = append(errs, ctxErr)
				break
			}
			errs = append(errs, fmt.Errorf("insert into %s row %d: %w", table, i, err))
			continue
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}

	joined := errors.Join(errs...)
	metrics.RecordDBQuery("insert", table, time.Since(start), joined)
	return inserted, joined
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

// InsertSessions inserts academic sessions that are not stored yet.
func (db *DB) InsertSessions(ctx context.Context, rows []models.AcademicSession) (int64, error) {
	return insertRows(ctx, db, TableSession,
		[]string{"session", "semester", "start_date", "end_date"}, rows,
		func(r models.AcademicSession) []any {
			return []any{r.Session, r.Semester, r.StartDate.UTC(), r.EndDate.UTC()}
		})
}

// InsertCourses inserts courses that are not stored yet.
func (db *DB) InsertCourses(ctx context.Context, rows []models.Course) (int64, error) {
	return insertRows(ctx, db, TableCourse,
		[]string{"code", "name", "credits"}, rows,
		func(r models.Course) []any {
			return []any{r.Code, r.Name, r.Credits}
		})
}

// InsertLecturers inserts lecturers that are not stored yet.
func (db *DB) InsertLecturers(ctx context.Context, rows []models.Lecturer) (int64, error) {
	return insertRows(ctx, db, TableLecturer,
		[]string{"worker_no", "name"}, rows,
		func(r models.Lecturer) []any {
			return []any{r.WorkerNo, r.Name}
		})
}

// InsertCourseSections inserts course sections that are not stored yet.
// An existing section keeps its lecturer link.
func (db *DB) InsertCourseSections(ctx context.Context, rows []models.CourseSection) (int64, error) {
	return insertRows(ctx, db, TableCourseSection,
		[]string{"session", "semester", "course_code", "section", "lecturer_no"}, rows,
		func(r models.CourseSection) []any {
			return []any{r.Session, r.Semester, r.CourseCode, r.Section, nullableInt64(r.LecturerNo)}
		})
}

// InsertVenues inserts venues that are not stored yet.
func (db *DB) InsertVenues(ctx context.Context, rows []models.Venue) (int64, error) {
	return insertRows(ctx, db, TableVenue,
		[]string{"code", "name", "short_name", "capacity", "type"}, rows,
		func(r models.Venue) []any {
			return []any{r.Code, r.Name, r.ShortName, r.Capacity, int(r.Type)}
		})
}

// InsertSchedules inserts schedule slots that are not stored yet.
func (db *DB) InsertSchedules(ctx context.Context, rows []models.Schedule) (int64, error) {
	return insertRows(ctx, db, TableCourseSectionSchedule,
		[]string{"session", "semester", "course_code", "section", "day", "time", "venue_code"}, rows,
		func(r models.Schedule) []any {
			return []any{r.Session, r.Semester, r.CourseCode, r.Section, int(r.Day), int(r.Time), nullableString(r.VenueCode)}
		})
}

// InsertStudents inserts students that are not stored yet.
func (db *DB) InsertStudents(ctx context.Context, rows []models.Student) (int64, error) {
	return insertRows(ctx, db, TableStudent,
		[]string{"matric_no", "name", "course_code", "faculty_code", "kp_no"}, rows,
		func(r models.Student) []any {
			return []any{r.MatricNo, r.Name, r.CourseCode, r.FacultyCode, r.IdentityNo}
		})
}

// InsertRegistrations inserts student registrations that are not stored yet.
func (db *DB) InsertRegistrations(ctx context.Context, rows []models.StudentRegisteredCourse) (int64, error) {
	return insertRows(ctx, db, TableStudentRegisteredCourse,
		[]string{"matric_no", "session", "semester", "course_code", "section"}, rows,
		func(r models.StudentRegisteredCourse) []any {
			return []any{r.MatricNo, r.Session, r.Semester, r.CourseCode, r.Section}
		})
}

// query runs a read and records its duration.
func (db *DB) query(ctx context.Context, table, q string, args ...any) (*sql.Rows, func(error), error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		metrics.RecordDBQuery("select", table, time.Since(start), err)
		return nil, nil, fmt.Errorf("query %s: %w", table, err)
	}
	done := func(err error) {
		metrics.RecordDBQuery("select", table, time.Since(start), err)
	}
	return rows, done, nil
}

// ListSessions returns every stored session, oldest first.
func (db *DB) ListSessions(ctx context.Context) ([]models.AcademicSession, error) {
	rows, done, err := db.query(ctx, TableSession,
		`SELECT session, semester, start_date, end_date FROM session ORDER BY session, semester`)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rows)

	var out []models.AcademicSession
	for rows.Next() {
		var s models.AcademicSession
		if err := rows.Scan(&s.Session, &s.Semester, &s.StartDate, &s.EndDate); err != nil {
			done(err)
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	done(rows.Err())
	return out, rows.Err()
}

// ListCourseSections returns stored course sections in key order. With
// onlyUnscheduled it returns only sections that have no schedule rows.
func (db *DB) ListCourseSections(ctx context.Context, onlyUnscheduled bool) ([]models.CourseSection, error) {
	q := `SELECT cs.session, cs.semester, cs.course_code, cs.section, cs.lecturer_no FROM course_section cs`
	if onlyUnscheduled {
		q += ` WHERE NOT EXISTS (
			SELECT 1 FROM course_section_schedule css
			WHERE css.session = cs.session AND css.semester = cs.semester
			AND css.course_code = cs.course_code AND css.section = cs.section)`
	}
	q += ` ORDER BY cs.session, cs.semester, cs.course_code, cs.section`

	rows, done, err := db.query(ctx, TableCourseSection, q)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rows)

	var out []models.CourseSection
	for rows.Next() {
		var cs models.CourseSection
		var lecturer sql.NullInt64
		if err := rows.Scan(&cs.Session, &cs.Semester, &cs.CourseCode, &cs.Section, &lecturer); err != nil {
			done(err)
			return nil, fmt.Errorf("scan course section: %w", err)
		}
		if lecturer.Valid {
			no := lecturer.Int64
			cs.LecturerNo = &no
		}
		out = append(out, cs)
	}
	done(rows.Err())
	return out, rows.Err()
}

// ListStudentMatrics returns every stored matric number in order.
func (db *DB) ListStudentMatrics(ctx context.Context) ([]string, error) {
	rows, done, err := db.query(ctx, TableStudent, `SELECT matric_no FROM student ORDER BY matric_no`)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rows)

	var out []string
	for rows.Next() {
		var matric string
		if err := rows.Scan(&matric); err != nil {
			done(err)
			return nil, fmt.Errorf("scan student matric: %w", err)
		}
		out = append(out, matric)
	}
	done(rows.Err())
	return out, rows.Err()
}

// ListStudentsMissingIdentity returns students whose kp_no is still the sentinel.
func (db *DB) ListStudentsMissingIdentity(ctx context.Context, sentinel string) ([]models.Student, error) {
	rows, done, err := db.query(ctx, TableStudent,
		`SELECT matric_no, name, course_code, faculty_code, kp_no FROM student WHERE kp_no = ? ORDER BY matric_no`, sentinel)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rows)

	var out []models.Student
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.MatricNo, &s.Name, &s.CourseCode, &s.FacultyCode, &s.IdentityNo); err != nil {
			done(err)
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, s)
	}
	done(rows.Err())
	return out, rows.Err()
}

// FirstRegistration returns one registered section of a student, most recent
// session first. ok is false when the student has no registrations.
func (db *DB) FirstRegistration(ctx context.Context, matricNo string) (reg models.Registration, ok bool, err error) {
	start := time.Now()
	err = db.conn.QueryRowContext(ctx,
		`SELECT session, semester, course_code, section FROM student_registered_course
		WHERE matric_no = ? ORDER BY session DESC, semester DESC, course_code, section LIMIT 1`, matricNo).
		Scan(&reg.Session, &reg.Semester, &reg.CourseCode, &reg.Section)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("select", TableStudentRegisteredCourse, time.Since(start), nil)
		return models.Registration{}, false, nil
	}
	metrics.RecordDBQuery("select", TableStudentRegisteredCourse, time.Since(start), err)
	if err != nil {
		return models.Registration{}, false, fmt.Errorf("query first registration for %s: %w", matricNo, err)
	}
	return reg, true, nil
}

// UpdateStudentIdentity sets kp_no for students with the given name whose
// kp_no is still the sentinel. It returns the number of rows updated.
func (db *DB) UpdateStudentIdentity(ctx context.Context, name, identityNo, sentinel string) (int64, error) {
	start := time.Now()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE student SET kp_no = ? WHERE name = ? AND kp_no = ?`, identityNo, name, sentinel)
	metrics.RecordDBQuery("update", TableStudent, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("update identity for %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// CountRows returns the number of rows in one of the synchronized tables.
func (db *DB) CountRows(ctx context.Context, table string) (int64, error) {
	if !knownTables[table] {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	start := time.Now()
	var n int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n) //nolint:gosec // table is whitelisted
	metrics.RecordDBQuery("count", table, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
