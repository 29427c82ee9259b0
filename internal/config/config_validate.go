// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package config

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

var academicSessionPattern = regexp.MustCompile(`^\d{4}/\d{4}$`)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateUpstream(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateSync(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateUpstream validates the TTMS endpoints and, when the selected job
// needs an admin session, the scraper credentials.
func (c *Config) validateUpstream() error {
	if err := validateHTTPURL(c.Upstream.BaseURL, "TTMS_URL"); err != nil {
		return err
	}
	if err := validateHTTPURL(c.Upstream.ElevateURL, "TTMS_ELEVATE_URL"); err != nil {
		return err
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("TTMS_TIMEOUT must be positive")
	}
	if c.Upstream.MaxRequestsPerSecond < 0 {
		return fmt.Errorf("TTMS_MAX_REQUESTS_PER_SECOND must be >= 0, got %v", c.Upstream.MaxRequestsPerSecond)
	}
	return c.validateCredentials()
}

func (c *Config) validateCredentials() error {
	if !c.Sync.NeedsSession() {
		return nil
	}
	if c.Upstream.Login == "" {
		return fmt.Errorf("SCRAPER_MATRIC_NO is required for job %q", c.Sync.Job)
	}
	if c.Upstream.Password == "" {
		return fmt.Errorf("SCRAPER_PASSWORD is required for job %q", c.Sync.Job)
	}
	if containsPlaceholder(c.Upstream.Password) {
		return fmt.Errorf("SCRAPER_PASSWORD contains a placeholder value")
	}
	return nil
}

// validateDatabase validates the store settings for the selected driver
func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required when DB_DRIVER=mysql")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required when DB_DRIVER=mysql")
		}
	case DriverDuckDB:
		if c.Database.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when DB_DRIVER=duckdb")
		}
		if c.Database.Threads < 0 {
			return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
		}
	default:
		return fmt.Errorf("DB_DRIVER must be one of: mysql, duckdb (got %q)", c.Database.Driver)
	}
	return nil
}

// validateSync validates job selection, pacing and cut-offs
func (c *Config) validateSync() error {
	if c.Sync.Job != JobAll && !slices.Contains(JobOrder, c.Sync.Job) {
		return fmt.Errorf("SYNC_JOB must be %q or one of: %s (got %q)",
			JobAll, strings.Join(JobOrder, ", "), c.Sync.Job)
	}
	if c.Sync.Interval < 0 {
		return fmt.Errorf("SYNC_INTERVAL must be >= 0")
	}
	if c.Sync.RetryBudget < 1 {
		return fmt.Errorf("SYNC_RETRY_BUDGET must be at least 1, got %d", c.Sync.RetryBudget)
	}
	if c.Sync.Delay < 0 || c.Sync.HeavyDelay < 0 {
		return fmt.Errorf("SYNC_DELAY and SYNC_HEAVY_DELAY must be >= 0")
	}
	if c.Sync.StudentPageSize < 1 {
		return fmt.Errorf("SYNC_STUDENT_PAGE_SIZE must be at least 1, got %d", c.Sync.StudentPageSize)
	}
	if !academicSessionPattern.MatchString(c.Sync.CourseFloor) {
		return fmt.Errorf("SYNC_COURSE_FLOOR must look like 2006/2007, got %q", c.Sync.CourseFloor)
	}
	if !academicSessionPattern.MatchString(c.Sync.StudentFloor) {
		return fmt.Errorf("SYNC_STUDENT_FLOOR must look like 2007/2008, got %q", c.Sync.StudentFloor)
	}
	if c.Sync.IdentitySentinel == "" {
		return fmt.Errorf("SYNC_IDENTITY_SENTINEL must not be empty")
	}
	if c.Sync.VenueFaculty == "" && (c.Sync.Job == JobAll || c.Sync.Job == JobVenues) {
		return fmt.Errorf("SYNC_VENUE_FACULTY is required for the venues job")
	}
	return nil
}

// validateServer validates the ops endpoint (only if enabled)
func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateHTTPURL checks scheme and host. Unlike a base URL, TTMS endpoints
// carry a script path, so paths are allowed; query strings are not.
func validateHTTPURL(rawURL, fieldName string) error {
	if rawURL == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}

// placeholderPatterns indicate the operator forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
}

func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
