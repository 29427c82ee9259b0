// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

/*
Package main is the entry point for the jadual-sync pipeline.

jadual-sync copies a university's timetable from the TTMS web service into a
relational store: academic sessions, courses, sections, schedules, lecturers,
students, registrations and venues. Each entity has its own synchronizer, and
the pipeline runs them in dependency order.

# Modes

One-shot (SYNC_INTERVAL=0, the default): the selected job or all jobs run
once and the process exits. The exit status is non-zero only when the run
aborted, i.e. authentication failed, the session retry budget was exhausted,
or the process was interrupted. Failures of individual items are logged and
skipped.

Daemon (SYNC_INTERVAL>0): a Suture v4 tree re-runs the pipeline on a ticker.
With OPS_ENABLED=true an operations endpoint is served alongside it:

	RootSupervisor ("jadual")
	├── SyncSupervisor ("sync-layer")
	│   └── sync-pipeline
	└── APISupervisor ("api-layer")
	    └── HTTP Server (/healthz, /status, /metrics)

# Configuration

Configuration is loaded via Koanf v2 (defaults, then config.yaml, then
environment variables). The essentials:

	SCRAPER_MATRIC_NO / SCRAPER_PASSWORD scraper account (privileged jobs only)
	DB_DRIVER                            mysql (default) or duckdb
	DB_HOST, DB_PORT, DB_NAME, ...       MySQL target
	DUCKDB_PATH                          DuckDB file
	SYNC_JOB                             all, sessions, courses, course-sections,
	                                     schedules, lecturers, students,
	                                     registrations, identity-backfill, venues
	LOG_LEVEL / LOG_FORMAT               zerolog level and json|console

# Example Usage

	export SCRAPER_MATRIC_NO=A12CS0001
	export SCRAPER_PASSWORD=secret
	export DB_HOST=mysql
	SYNC_JOB=schedules ./jadual-sync

# Signal Handling

SIGINT and SIGTERM cancel the running job between upstream calls. In daemon
mode the supervisor then stops the HTTP server within its shutdown timeout.
*/
package main
