// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

//go:build integration

package testinfra

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// TestMySQLContainer_Integration verifies the container accepts connections
// with the credentials it advertises.
func TestMySQLContainer_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	mysql, err := NewMySQLContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to create MySQL container: %v", err)
	}
	defer CleanupContainer(t, ctx, mysql.Container)

	cfg := mysql.DatabaseConfig()
	if cfg.Port == 0 || cfg.Host == "" {
		t.Fatalf("incomplete config: %+v", cfg)
	}

	dsn := cfg.User + ":" + cfg.Password + "@tcp(" + cfg.Addr() + ")/" + cfg.Name
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	var version string
	if err := conn.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version); err != nil {
		t.Fatalf("query version: %v", err)
	}
	t.Logf("MySQL version: %s", version)
}
