// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/jadual/config.yaml",
	"/etc/jadual/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:              "http://web.fc.utm.my/ttms/web_man_webservice_json.cgi",
			ElevateURL:           "http://web.fc.utm.my/ttms/auth-admin.php",
			Timeout:              30 * time.Second,
			MaxRequestsPerSecond: 0,
			CircuitBreaker:       true,
		},
		Database: DatabaseConfig{
			Driver:    DriverMySQL,
			Path:      "/data/jadual.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
			Host:      "localhost",
			Port:      3306,
			User:      "root",
			Name:      "ttms",
		},
		Sync: SyncConfig{
			Job:              JobAll,
			Interval:         0, // run once
			RetryBudget:      3,
			Delay:            500 * time.Millisecond,
			HeavyDelay:       time.Second,
			StudentPageSize:  50,
			CourseFloor:      "2006/2007",
			StudentFloor:     "2007/2008",
			VenueFaculty:     "FSKSM",
			IdentitySentinel: "-",
		},
		Server: ServerConfig{
			Enabled: false,
			Host:    "0.0.0.0",
			Port:    9102,
			Timeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values
//  2. Config File: optional YAML config file (if exists)
//  3. Environment Variables: override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// SCRAPER_MATRIC_NO -> upstream.login, DB_PORT -> database.port, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// The scraper credentials and DB_* names are the ones the original batch
// scripts were deployed with.
var envMappings = map[string]string{
	// Upstream
	"ttms_url":                      "upstream.base_url",
	"ttms_elevate_url":              "upstream.elevate_url",
	"scraper_matric_no":             "upstream.login",
	"scraper_password":              "upstream.password",
	"ttms_timeout":                  "upstream.timeout",
	"ttms_max_requests_per_second": "upstream.max_requests_per_second",
	"ttms_circuit_breaker":          "upstream.circuit_breaker",

	// Database
	"db_driver":         "database.driver",
	"db_host":           "database.host",
	"db_port":           "database.port",
	"db_user":           "database.user",
	"db_password":       "database.password",
	"db_name":           "database.name",
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Sync
	"sync_job":                    "sync.job",
	"sync_interval":               "sync.interval",
	"sync_retry_budget":           "sync.retry_budget",
	"sync_delay":                  "sync.delay",
	"sync_heavy_delay":            "sync.heavy_delay",
	"sync_student_page_size":      "sync.student_page_size",
	"sync_course_floor":           "sync.course_floor",
	"sync_student_floor":          "sync.student_floor",
	"sync_venue_faculty":          "sync.venue_faculty",
	"sync_venue_room_filter":      "sync.venue_room_filter",
	"sync_identity_sentinel":      "sync.identity_sentinel",
	"sync_schedules_only_missing": "sync.schedules_only_missing",

	// Ops server
	"ops_enabled": "server.enabled",
	"http_host":   "server.host",
	"http_port":   "server.port",
	"http_timeout": "server.timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are ignored by koanf.
//
// Examples:
//   - SCRAPER_MATRIC_NO -> upstream.login
//   - DB_PORT -> database.port
//   - SYNC_RETRY_BUDGET -> sync.retry_budget
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}
