// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

// Package config loads the sync pipeline configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values from defaultConfig()
//  2. Config File: optional YAML (CONFIG_PATH, ./config.yaml, /etc/jadual/config.yaml)
//  3. Environment Variables: override any setting
//
// The sync jobs take no command-line flags. Everything a run needs, from the
// upstream credentials to the target database and the job selection, comes
// from the process environment or the YAML file.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Job names accepted by SYNC_JOB. JobAll runs every synchronizer in dependency order.
const (
	JobAll              = "all"
	JobSessions         = "sessions"
	JobCourses          = "courses"
	JobCourseSections   = "course-sections"
	JobSchedules        = "schedules"
	JobLecturers        = "lecturers"
	JobStudents         = "students"
	JobRegistrations    = "registrations"
	JobIdentityBackfill = "identity-backfill"
	JobVenues           = "venues"
)

// JobOrder is the fixed dependency order of the synchronizers. Later jobs read
// rows written by earlier ones.
var JobOrder = []string{
	JobSessions,
	JobCourses,
	JobCourseSections,
	JobSchedules,
	JobLecturers,
	JobStudents,
	JobRegistrations,
	JobIdentityBackfill,
	JobVenues,
}

// Database drivers.
const (
	DriverMySQL  = "mysql"
	DriverDuckDB = "duckdb"
)

// Config holds all application configuration.
type Config struct {
	Upstream UpstreamConfig `koanf:"upstream"`
	Database DatabaseConfig `koanf:"database"`
	Sync     SyncConfig     `koanf:"sync"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// UpstreamConfig describes the TTMS web service.
type UpstreamConfig struct {
	BaseURL    string        `koanf:"base_url"`    // JSON web service endpoint, keyed by the entity parameter
	ElevateURL string        `koanf:"elevate_url"` // admin elevation endpoint
	Login      string        `koanf:"login"`       // SCRAPER_MATRIC_NO
	Password   string        `koanf:"password"`    // SCRAPER_PASSWORD
	Timeout    time.Duration `koanf:"timeout"`

	// MaxRequestsPerSecond caps the request rate across all entities.
	// 0 disables the cap; the per-job delays still apply.
	MaxRequestsPerSecond float64 `koanf:"max_requests_per_second"`

	CircuitBreaker bool `koanf:"circuit_breaker"`
}

// DatabaseConfig selects and configures the relational store.
type DatabaseConfig struct {
	Driver string `koanf:"driver"` // mysql or duckdb

	// DuckDB
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`

	// MySQL
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
}

// Addr returns host:port for the MySQL driver.
func (d DatabaseConfig) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// SyncConfig holds the knobs of the pipeline itself.
type SyncConfig struct {
	// Job is the synchronizer to run, or "all".
	Job string `koanf:"job"`

	// Interval re-runs the pipeline periodically under the supervisor.
	// 0 runs once and exits.
	Interval time.Duration `koanf:"interval"`

	// RetryBudget is the number of consecutive session-expiry failures after
	// which a run aborts. Each failure below the budget triggers login+elevate
	// and a retry of the same unit of work.
	RetryBudget int `koanf:"retry_budget"`

	// Delay precedes every light upstream call (sessions, courses, sections,
	// schedules, lecturers, section rosters).
	Delay time.Duration `koanf:"delay"`

	// HeavyDelay precedes every student listing and registration call.
	HeavyDelay time.Duration `koanf:"heavy_delay"`

	StudentPageSize int `koanf:"student_page_size"`

	// CourseFloor: sessions strictly before it have no course or section data.
	CourseFloor string `koanf:"course_floor"`

	// StudentFloor: sessions strictly before it have no student listings.
	StudentFloor string `koanf:"student_floor"`

	VenueFaculty    string `koanf:"venue_faculty"`
	VenueRoomFilter string `koanf:"venue_room_filter"`

	// IdentitySentinel marks a student whose national-ID is still unknown.
	IdentitySentinel string `koanf:"identity_sentinel"`

	// SchedulesOnlyMissing limits the schedule job to sections that have no
	// schedule rows yet.
	SchedulesOnlyMissing bool `koanf:"schedules_only_missing"`
}

// NeedsSession reports whether the selected job talks to privileged entities.
func (s SyncConfig) NeedsSession() bool {
	switch s.Job {
	case JobAll, JobCourseSections, JobLecturers, JobStudents, JobIdentityBackfill:
		return true
	default:
		return false
	}
}

// ServerConfig is the operations HTTP endpoint used in daemon mode.
type ServerConfig struct {
	Enabled bool          `koanf:"enabled"`
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig mirrors logging.Config for the loadable fields.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, then validates it. See LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
