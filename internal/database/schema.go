// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package database

// Table names. The CRUD layer reads these tables directly, so they are part
// of the external contract.
const (
	TableSession                 = "session"
	TableCourse                  = "course"
	TableLecturer                = "lecturer"
	TableCourseSection           = "course_section"
	TableVenue                   = "venue"
	TableCourseSectionSchedule   = "course_section_schedule"
	TableStudent                 = "student"
	TableStudentRegisteredCourse = "student_registered_course"
)

// knownTables guards CountRows against arbitrary identifiers.
var knownTables = map[string]bool{
	TableSession:                 true,
	TableCourse:                  true,
	TableLecturer:                true,
	TableCourseSection:           true,
	TableVenue:                   true,
	TableCourseSectionSchedule:   true,
	TableStudent:                 true,
	TableStudentRegisteredCourse: true,
}

// Tables lists every synchronized table in dependency order.
func Tables() []string {
	return []string{
		TableSession,
		TableCourse,
		TableLecturer,
		TableCourseSection,
		TableVenue,
		TableCourseSectionSchedule,
		TableStudent,
		TableStudentRegisteredCourse,
	}
}

const mysqlMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INT PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	description VARCHAR(255) NOT NULL,
	applied_at DATETIME NOT NULL
)`

// applied_at is written explicitly; a CURRENT_TIMESTAMP default would need ICU.
const duckdbMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name VARCHAR NOT NULL,
	description VARCHAR NOT NULL,
	applied_at TIMESTAMP NOT NULL
)`

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS session (
		session VARCHAR(9) NOT NULL,
		semester TINYINT UNSIGNED NOT NULL,
		start_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		end_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (session, semester)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS course (
		code VARCHAR(8) NOT NULL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		credits TINYINT UNSIGNED NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS lecturer (
		worker_no MEDIUMINT UNSIGNED NOT NULL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		INDEX idx_lecturer_name (name),
		FULLTEXT INDEX idx_lecturer_name_fulltext (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS course_section (
		session VARCHAR(9) NOT NULL,
		semester TINYINT UNSIGNED NOT NULL,
		course_code VARCHAR(8) NOT NULL,
		section VARCHAR(4) NOT NULL,
		lecturer_no MEDIUMINT UNSIGNED NULL,
		CONSTRAINT course_section_pkey PRIMARY KEY (session, semester, course_code, section),
		CONSTRAINT fk_course_section_session_semester FOREIGN KEY (session, semester)
			REFERENCES session (session, semester) ON DELETE CASCADE ON UPDATE CASCADE,
		CONSTRAINT fk_course_section_course_code FOREIGN KEY (course_code)
			REFERENCES course (code) ON DELETE CASCADE ON UPDATE CASCADE,
		CONSTRAINT fk_course_section_lecturer_no FOREIGN KEY (lecturer_no)
			REFERENCES lecturer (worker_no) ON DELETE SET NULL ON UPDATE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS venue (
		code VARCHAR(16) NOT NULL PRIMARY KEY,
		name VARCHAR(50) NOT NULL,
		short_name VARCHAR(8) NOT NULL,
		capacity SMALLINT UNSIGNED NOT NULL,
		type TINYINT UNSIGNED NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS course_section_schedule (
		session VARCHAR(9) NOT NULL,
		semester TINYINT UNSIGNED NOT NULL,
		course_code VARCHAR(8) NOT NULL,
		section VARCHAR(4) NOT NULL,
		venue_code VARCHAR(16) NULL,
		day TINYINT UNSIGNED NOT NULL,
		time TINYINT UNSIGNED NOT NULL,
		CONSTRAINT course_section_schedule_pkey PRIMARY KEY (session, semester, course_code, section, day, time),
		CONSTRAINT fk_course_section_schedule_session_course FOREIGN KEY (session, semester, course_code, section)
			REFERENCES course_section (session, semester, course_code, section) ON DELETE CASCADE ON UPDATE CASCADE,
		CONSTRAINT fk_course_section_schedule_venue FOREIGN KEY (venue_code)
			REFERENCES venue (code) ON DELETE SET NULL ON UPDATE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS student (
		matric_no VARCHAR(9) NOT NULL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		course_code VARCHAR(8) NOT NULL,
		faculty_code VARCHAR(8) NOT NULL,
		kp_no VARCHAR(12) NOT NULL,
		INDEX idx_student_name (name),
		FULLTEXT INDEX idx_student_name_fulltext (name),
		FULLTEXT INDEX idx_student_matric_no_fulltext (matric_no)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS student_registered_course (
		matric_no VARCHAR(9) NOT NULL,
		session VARCHAR(9) NOT NULL,
		semester TINYINT UNSIGNED NOT NULL,
		course_code VARCHAR(8) NOT NULL,
		section VARCHAR(4) NOT NULL,
		CONSTRAINT student_registered_course_pkey PRIMARY KEY (matric_no, session, semester, course_code, section),
		CONSTRAINT fk_student_registered_course_matric_no FOREIGN KEY (matric_no)
			REFERENCES student (matric_no) ON DELETE CASCADE ON UPDATE CASCADE,
		CONSTRAINT fk_student_registered_course_session_course FOREIGN KEY (session, semester, course_code, section)
			REFERENCES course_section (session, semester, course_code, section) ON DELETE CASCADE ON UPDATE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// DuckDB rejects ON DELETE/ON UPDATE actions and cannot UPDATE a row that
// another table references, so student_registered_course carries no FK to
// student (the identity backfill updates student rows in place).
var duckdbSchema = []string{
	`CREATE TABLE IF NOT EXISTS session (
		session VARCHAR NOT NULL,
		semester INTEGER NOT NULL,
		start_date TIMESTAMP NOT NULL,
		end_date TIMESTAMP NOT NULL,
		PRIMARY KEY (session, semester)
	)`,

	`CREATE TABLE IF NOT EXISTS course (
		code VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		credits INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS lecturer (
		worker_no BIGINT PRIMARY KEY,
		name VARCHAR NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lecturer_name ON lecturer (name)`,

	`CREATE TABLE IF NOT EXISTS course_section (
		session VARCHAR NOT NULL,
		semester INTEGER NOT NULL,
		course_code VARCHAR NOT NULL,
		section VARCHAR NOT NULL,
		lecturer_no BIGINT,
		PRIMARY KEY (session, semester, course_code, section),
		FOREIGN KEY (session, semester) REFERENCES session (session, semester),
		FOREIGN KEY (course_code) REFERENCES course (code),
		FOREIGN KEY (lecturer_no) REFERENCES lecturer (worker_no)
	)`,

	`CREATE TABLE IF NOT EXISTS venue (
		code VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		short_name VARCHAR NOT NULL,
		capacity INTEGER NOT NULL,
		type INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS course_section_schedule (
		session VARCHAR NOT NULL,
		semester INTEGER NOT NULL,
		course_code VARCHAR NOT NULL,
		section VARCHAR NOT NULL,
		venue_code VARCHAR,
		day INTEGER NOT NULL,
		time INTEGER NOT NULL,
		PRIMARY KEY (session, semester, course_code, section, day, time),
		FOREIGN KEY (session, semester, course_code, section) REFERENCES course_section (session, semester, course_code, section),
		FOREIGN KEY (venue_code) REFERENCES venue (code)
	)`,

	`CREATE TABLE IF NOT EXISTS student (
		matric_no VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		course_code VARCHAR NOT NULL,
		faculty_code VARCHAR NOT NULL,
		kp_no VARCHAR NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_student_name ON student (name)`,

	`CREATE TABLE IF NOT EXISTS student_registered_course (
		matric_no VARCHAR NOT NULL,
		session VARCHAR NOT NULL,
		semester INTEGER NOT NULL,
		course_code VARCHAR NOT NULL,
		section VARCHAR NOT NULL,
		PRIMARY KEY (matric_no, session, semester, course_code, section),
		FOREIGN KEY (session, semester, course_code, section) REFERENCES course_section (session, semester, course_code, section)
	)`,
}
