// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

/*
Package supervisor runs jadual-sync in daemon mode under suture v4.

When SYNC_INTERVAL is zero the binary runs the pipeline once and exits, and
no supervisor is built. Otherwise the tree looks like this:

	RootSupervisor ("jadual")
	├── SyncSupervisor ("sync-layer")
	│   └── SyncService (pipeline every SYNC_INTERVAL)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (/healthz, /metrics, /status)

Supervisor events are logged through sutureslog, which writes to the
zerolog-backed slog handler from internal/logging.

Services live in the services subpackage.
*/
package supervisor
