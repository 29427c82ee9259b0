// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

/*
Package services adapts jadual-sync components to suture.Service.

  - SyncService: runs a Runner (the sync pipeline) now and then once per
    interval, never overlapping runs.
  - HTTPServerService: wraps *http.Server with graceful shutdown.

Each service returns ctx.Err() on shutdown and implements fmt.Stringer so
suture can name it in its event log.

Example:

	tree.AddSyncService(services.NewSyncService(pipeline, cfg.Sync.Interval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))
*/
package services
