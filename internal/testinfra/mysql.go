// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tomtom215/jadual/internal/config"
)

const (
	// DefaultMySQLImage matches the production server major version.
	DefaultMySQLImage = "mysql:8.0"

	// DefaultMySQLPort is the MySQL protocol port inside the container.
	DefaultMySQLPort = "3306"

	defaultMySQLPassword = "jadual-test"
	defaultMySQLDatabase = "ttms"
)

// MySQLContainer represents a running MySQL container for testing.
type MySQLContainer struct {
	testcontainers.Container
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// MySQLOption configures the MySQL container.
type MySQLOption func(*mysqlConfig)

type mysqlConfig struct {
	image        string
	database     string
	startTimeout time.Duration
}

// WithMySQLImage sets a custom MySQL Docker image.
func WithMySQLImage(image string) MySQLOption {
	return func(c *mysqlConfig) {
		c.image = image
	}
}

// WithDatabaseName sets the schema created at startup.
func WithDatabaseName(name string) MySQLOption {
	return func(c *mysqlConfig) {
		c.database = name
	}
}

// WithStartTimeout sets the timeout for waiting for MySQL to accept connections.
func WithStartTimeout(timeout time.Duration) MySQLOption {
	return func(c *mysqlConfig) {
		c.startTimeout = timeout
	}
}

// NewMySQLContainer creates and starts a MySQL server with an empty database.
func NewMySQLContainer(ctx context.Context, opts ...MySQLOption) (*MySQLContainer, error) {
	cfg := &mysqlConfig{
		image:        DefaultMySQLImage,
		database:     defaultMySQLDatabase,
		startTimeout: 2 * time.Minute,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultMySQLPort + "/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": defaultMySQLPassword,
			"MYSQL_DATABASE":      cfg.database,
			"TZ":                  "UTC",
		},
		// The entrypoint restarts mysqld once after initialization, so the
		// ready line appears twice.
		WaitingFor: wait.ForAll(
			wait.ForLog("ready for connections").WithOccurrence(2),
			wait.ForListeningPort(DefaultMySQLPort+"/tcp"),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create mysql container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, DefaultMySQLPort+"/tcp")
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	port, err := strconv.Atoi(mappedPort.Port())
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("parse mapped port: %w", err)
	}

	return &MySQLContainer{
		Container: container,
		Host:      host,
		Port:      port,
		User:      "root",
		Password:  defaultMySQLPassword,
		Database:  cfg.database,
	}, nil
}

// DatabaseConfig returns a gateway configuration pointing at the container.
func (c *MySQLContainer) DatabaseConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Driver:   config.DriverMySQL,
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Name:     c.Database,
	}
}
