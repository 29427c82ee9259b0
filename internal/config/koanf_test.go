// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() carries the pipeline's historical values
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Upstream.BaseURL != "http://web.fc.utm.my/ttms/web_man_webservice_json.cgi" {
		t.Errorf("Upstream.BaseURL = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Login != "" || cfg.Upstream.Password != "" {
		t.Error("credentials should be empty by default")
	}

	if cfg.Database.Driver != DriverMySQL {
		t.Errorf("Database.Driver = %q, want mysql", cfg.Database.Driver)
	}
	if cfg.Database.Port != 3306 {
		t.Errorf("Database.Port = %d, want 3306", cfg.Database.Port)
	}

	if cfg.Sync.Job != JobAll {
		t.Errorf("Sync.Job = %q, want all", cfg.Sync.Job)
	}
	if cfg.Sync.RetryBudget != 3 {
		t.Errorf("Sync.RetryBudget = %d, want 3", cfg.Sync.RetryBudget)
	}
	if cfg.Sync.Delay != 500*time.Millisecond {
		t.Errorf("Sync.Delay = %v, want 500ms", cfg.Sync.Delay)
	}
	if cfg.Sync.HeavyDelay != time.Second {
		t.Errorf("Sync.HeavyDelay = %v, want 1s", cfg.Sync.HeavyDelay)
	}
	if cfg.Sync.StudentPageSize != 50 {
		t.Errorf("Sync.StudentPageSize = %d, want 50", cfg.Sync.StudentPageSize)
	}
	if cfg.Sync.CourseFloor != "2006/2007" || cfg.Sync.StudentFloor != "2007/2008" {
		t.Errorf("floors = %q/%q", cfg.Sync.CourseFloor, cfg.Sync.StudentFloor)
	}
	if cfg.Sync.IdentitySentinel != "-" {
		t.Errorf("Sync.IdentitySentinel = %q, want -", cfg.Sync.IdentitySentinel)
	}
	if cfg.Sync.Interval != 0 {
		t.Errorf("Sync.Interval = %v, want 0 (run once)", cfg.Sync.Interval)
	}

	if cfg.Server.Enabled {
		t.Error("Server.Enabled should be false by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		envVar   string
		expected string
	}{
		{"SCRAPER_MATRIC_NO", "upstream.login"},
		{"SCRAPER_PASSWORD", "upstream.password"},
		{"TTMS_URL", "upstream.base_url"},
		{"DB_DRIVER", "database.driver"},
		{"DB_HOST", "database.host"},
		{"DB_PORT", "database.port"},
		{"DB_USER", "database.user"},
		{"DB_PASSWORD", "database.password"},
		{"DB_NAME", "database.name"},
		{"DUCKDB_PATH", "database.path"},
		{"SYNC_JOB", "sync.job"},
		{"SYNC_RETRY_BUDGET", "sync.retry_budget"},
		{"SYNC_STUDENT_PAGE_SIZE", "sync.student_page_size"},
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},

		// Unknown variables are ignored
		{"HOME", ""},
		{"PATH", ""},
		{"SCRAPER_UNKNOWN", ""},
	}

	for _, tt := range tests {
		t.Run(tt.envVar, func(t *testing.T) {
			if got := envTransformFunc(tt.envVar); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.envVar, got, tt.expected)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")

	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want empty", got)
	}

	if err := os.WriteFile("config.yaml", []byte("sync:\n  job: venues\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := findConfigFile(); got != "config.yaml" {
		t.Errorf("findConfigFile() = %q, want config.yaml", got)
	}

	custom := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(custom, []byte("sync:\n  job: venues\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, custom)
	if got := findConfigFile(); got != custom {
		t.Errorf("findConfigFile() = %q, want %q", got, custom)
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SCRAPER_MATRIC_NO", "A12CS0001")
	t.Setenv("SCRAPER_PASSWORD", "hunter2")
	t.Setenv("DB_DRIVER", "duckdb")
	t.Setenv("DUCKDB_PATH", ":memory:")
	t.Setenv("SYNC_JOB", "students")
	t.Setenv("SYNC_RETRY_BUDGET", "5")
	t.Setenv("SYNC_HEAVY_DELAY", "2s")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Upstream.Login != "A12CS0001" {
		t.Errorf("Upstream.Login = %q", cfg.Upstream.Login)
	}
	if cfg.Database.Driver != DriverDuckDB || cfg.Database.Path != ":memory:" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Sync.Job != JobStudents {
		t.Errorf("Sync.Job = %q", cfg.Sync.Job)
	}
	if cfg.Sync.RetryBudget != 5 {
		t.Errorf("Sync.RetryBudget = %d, want 5", cfg.Sync.RetryBudget)
	}
	if cfg.Sync.HeavyDelay != 2*time.Second {
		t.Errorf("Sync.HeavyDelay = %v, want 2s", cfg.Sync.HeavyDelay)
	}
	// untouched defaults survive
	if cfg.Sync.StudentPageSize != 50 {
		t.Errorf("Sync.StudentPageSize = %d, want 50", cfg.Sync.StudentPageSize)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	t.Chdir(t.TempDir())

	configContent := `
database:
  driver: duckdb
  path: /tmp/from-file.duckdb
sync:
  job: venues
  venue_faculty: FKE
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("SYNC_VENUE_FACULTY", "FSKSM")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Database.Path != "/tmp/from-file.duckdb" {
		t.Errorf("Database.Path = %q, want file value", cfg.Database.Path)
	}
	if cfg.Sync.Job != JobVenues {
		t.Errorf("Sync.Job = %q, want venues", cfg.Sync.Job)
	}
	if cfg.Sync.VenueFaculty != "FSKSM" {
		t.Errorf("Sync.VenueFaculty = %q, env should override file", cfg.Sync.VenueFaculty)
	}
}

func TestLoadWithKoanfMissingCredentials(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SCRAPER_MATRIC_NO", "")
	t.Setenv("SCRAPER_PASSWORD", "")
	t.Setenv("SYNC_JOB", "all")

	_, err := LoadWithKoanf()
	if err == nil {
		t.Fatal("expected validation error without credentials")
	}
	if !strings.Contains(err.Error(), "SCRAPER_MATRIC_NO") {
		t.Errorf("error = %v, want mention of SCRAPER_MATRIC_NO", err)
	}
}
