// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

// Package testinfra starts throwaway containers for integration tests.
//
// The MySQLContainer runs the production store so the gateway's MySQL
// dialect (INSERT IGNORE, FK cascades, FULLTEXT indexes) is exercised
// against a real server:
//
//	mysql, err := testinfra.NewMySQLContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, mysql.Container)
//
//	db, err := database.New(mysql.DatabaseConfig())
//
// Everything here is behind the integration build tag and skips itself
// when Docker is unavailable:
//
//	go test -tags integration ./...
package testinfra
