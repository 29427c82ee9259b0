// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

// Package ttms holds the wire records returned by the TTMS JSON web service.
//
// Every entity answers with a top-level JSON array of these records. Field
// names are the upstream Malay identifiers and are kept verbatim in the json
// tags; Go names are translated.
//
// Nullable or sometimes-missing upstream fields are pointers so a mapper can
// tell "absent" from a zero value.
package ttms

// Authentication is the answer of the authentication entity.
type Authentication struct {
	SessionID   string `json:"session_id"`
	LoginName   string `json:"login_name"`
	Description string `json:"description"`
	FullName    string `json:"full_name"`
}

// Elevation is the answer of auth-admin.php.
type Elevation struct {
	SessionID string `json:"session_id"`
}

// Session (sesisemester) is one academic session/semester.
// Dates arrive as free-form strings and are parsed by the sessions job.
type Session struct {
	SessionSemesterID string `json:"sesi_semester_id"`
	Semester          int    `json:"semester" validate:"min=1,max=3"`
	StartDate         string `json:"tarikh_mula"`
	EndDate           string `json:"tarikh_tamat"`
	Session           string `json:"sesi" validate:"required,academic_session"`
}

// Course (subjek) is a subject offered in a session.
type Course struct {
	Code          string `json:"kod_subjek" validate:"required"`
	Name          string `json:"nama_subjek"`
	LecturerCount int    `json:"bil_pensyarah"`
	SectionCount  int    `json:"bil_seksyen"`
	StudentCount  int    `json:"bil_pelajar"`
}

// Student (pelajar) is one row of the paginated student listing.
// IdentityNo is frequently empty.
type Student struct {
	Name        string `json:"nama"`
	CourseYear  int    `json:"tahun_kursus"`
	CourseCount int    `json:"bil_subjek"`
	FacultyCode string `json:"kod_fakulti"`
	CourseCode  string `json:"kod_kursus"`
	IdentityNo  string `json:"no_kp"`
	MatricNo    string `json:"no_matrik"`
}

// Lecturer (pensyarah) is a staff member teaching in a session.
type Lecturer struct {
	Name         string `json:"nama"`
	CourseCount  int    `json:"bil_subjek"`
	WorkerNo     int64  `json:"no_pekerja"`
	StudentCount int    `json:"bil_pelajar"`
	SectionCount int    `json:"bil_seksyen"`
}

// CourseSection (subjek_seksyen) lists a course's sections in a session.
// Sections is null for courses with no open section.
type CourseSection struct {
	Code          string           `json:"kod_subjek"`
	Name          string           `json:"nama_subjek"`
	SectionCount  int              `json:"bil_seksyen"`
	StudentCount  int              `json:"bil_pelajar"`
	LecturerCount *int             `json:"bil_pensyarah"`
	Sections      []SectionSummary `json:"seksyen_list"`
}

// SectionSummary is one entry of seksyen_list. Lecturer holds the
// lecturer's display name, not their worker number.
type SectionSummary struct {
	Lecturer     *string `json:"pensyarah"`
	Section      string  `json:"seksyen"`
	StudentCount int     `json:"bil_pelajar"`
}

// SessionCourse (pelajar_subjek) is one registration of a student.
type SessionCourse struct {
	Code       string `json:"kod_subjek"`
	Section    string `json:"seksyen"`
	Status     string `json:"status"`
	CourseYear int    `json:"tahun_kursus"`
	Session    string `json:"sesi"`
	Name       string `json:"nama_subjek"`
	Semester   int    `json:"semester"`
	CourseCode string `json:"kod_kursus"`
}

// CourseTimetable (jadual_subjek) is one weekly slot of a section.
// Upstream omits fields on broken rows, so every field is optional.
type CourseTimetable struct {
	Code    *string        `json:"kod_subjek"`
	Room    *TimetableRoom `json:"ruang"`
	Time    *int           `json:"masa"`
	Day     *int           `json:"hari"`
	Section *string        `json:"seksyen"`
	ID      *string        `json:"id_jws"`
}

// TimetableRoom is the venue embedded in a timetable slot.
type TimetableRoom struct {
	Code      string `json:"kod_ruang"`
	Name      string `json:"nama_ruang"`
	ShortName string `json:"nama_ruang_singkatan"`
}

// FacultyRoom (ruang) is a room owned by a faculty.
// Kind is "Makmal", "Bilik Kuliah" or "-".
type FacultyRoom struct {
	Kind           string `json:"jenis"`
	FacultyCode    string `json:"kod_fakulti"`
	Code           string `json:"kod_ruang"`
	Capacity       int    `json:"kapasiti"`
	ShortName      string `json:"nama_ruang_singkatan"`
	DepartmentCode string `json:"kod_jabatan"`
	Name           string `json:"nama_ruang"`
}

// SectionStudent (subjek_pelajar) is one member of a section roster.
type SectionStudent struct {
	Name        string  `json:"nama"`
	IdentityNo  *string `json:"no_kp"`
	CourseCode  *string `json:"kod_kursus"`
	FacultyCode string  `json:"kod_fakulti"`
	CourseYear  *int    `json:"tahun_kursus"`
	Status      *string `json:"status"`
}
