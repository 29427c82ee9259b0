// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

/*
Package api serves the operations endpoint of jadual-sync in daemon mode.

Routes:

	GET /healthz   store ping, schema version, session and breaker state
	GET /status    current or last pipeline run plus per-table row counts
	GET /metrics   Prometheus exposition (promhttp)

The timetable itself is served by the CRUD service that reads the same
store; this package only reports on the sync process.

Every JSON answer is wrapped in models.APIResponse and encoded with
goccy/go-json.
*/
package api
