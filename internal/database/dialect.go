// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package database

import (
	"fmt"
	"strings"

	"github.com/tomtom215/jadual/internal/config"
)

// dialect holds the SQL that differs between MySQL and DuckDB.
type dialect struct {
	name string

	// insertIgnore renders an insert that is a no-op on primary key conflict.
	insertIgnore func(table string, columns []string) string

	// schema is the initial-schema DDL, in dependency order.
	schema []string

	migrationsTable string
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case config.DriverMySQL:
		return mysqlDialect, nil
	case config.DriverDuckDB, "":
		return duckdbDialect, nil
	default:
		return dialect{}, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

var mysqlDialect = dialect{
	name: config.DriverMySQL,
	insertIgnore: func(table string, columns []string) string {
		return fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES (%s)",
			table, strings.Join(columns, ", "), placeholders(len(columns)))
	},
	schema:          mysqlSchema,
	migrationsTable: mysqlMigrationsTable,
}

var duckdbDialect = dialect{
	name: config.DriverDuckDB,
	insertIgnore: func(table string, columns []string) string {
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING",
			table, strings.Join(columns, ", "), placeholders(len(columns)))
	},
	schema:          duckdbSchema,
	migrationsTable: duckdbMigrationsTable,
}
