// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package models

import "time"

// APIResponse is the envelope of every JSON answer of the operations
// endpoint.
//
// Status is "success", "error", or a probe-specific value such as
// "healthy"/"unhealthy". Error is set only for failures.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata accompanies every response.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is a machine-readable error code plus a human message.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the payload of /healthz.
type HealthStatus struct {
	Database      string  `json:"database"`
	Driver        string  `json:"driver"`
	SchemaVersion int     `json:"schema_version"`
	Session       string  `json:"session"`
	Breaker       string  `json:"circuit_breaker,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}
