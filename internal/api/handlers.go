// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/jadual/internal/models"
	"github.com/tomtom215/jadual/internal/sync"
)

// Store is what the handlers read from the database. *database.DB
// implements it.
type Store interface {
	Ping(ctx context.Context) error
	Driver() string
	GetCurrentSchemaVersion(ctx context.Context) (int, error)
	CountRows(ctx context.Context, table string) (int64, error)
}

// StatusSource reports pipeline runs. *sync.Pipeline implements it.
type StatusSource interface {
	Status() sync.RunStatus
}

// stateFunc reports a component state for /healthz.
type stateFunc func() string

// Handler serves the operations routes.
type Handler struct {
	store     Store
	status    StatusSource
	tables    []string
	session   stateFunc
	breaker   stateFunc
	startTime time.Time
	timeout   time.Duration
}

// HandlerOption customizes a Handler.
type HandlerOption func(*Handler)

// WithSessionState reports the TTMS session state on /healthz.
func WithSessionState(fn func() string) HandlerOption {
	return func(h *Handler) { h.session = fn }
}

// WithBreakerState reports the upstream circuit breaker on /healthz.
func WithBreakerState(fn func() string) HandlerOption {
	return func(h *Handler) { h.breaker = fn }
}

// WithTimeout bounds the store queries of one request. Default 5s.
func WithTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// NewHandler creates a handler. tables lists the tables counted on /status.
func NewHandler(store Store, status StatusSource, tables []string, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:     store,
		status:    status,
		tables:    tables,
		startTime: time.Now(),
		timeout:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health answers 200 when the store answers a ping, 503 otherwise.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	health := models.HealthStatus{
		Database:      "connected",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	statusCode := http.StatusOK
	status := "healthy"

	if h.store == nil || h.store.Ping(ctx) != nil {
		health.Database = "disconnected"
		statusCode = http.StatusServiceUnavailable
		status = "unhealthy"
	} else {
		health.Driver = h.store.Driver()
		if v, err := h.store.GetCurrentSchemaVersion(ctx); err == nil {
			health.SchemaVersion = v
		}
	}
	if h.session != nil {
		health.Session = h.session()
	}
	if h.breaker != nil {
		health.Breaker = h.breaker()
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status:   status,
		Data:     health,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// StatusResponse is the payload of /status.
type StatusResponse struct {
	Run    sync.RunStatus   `json:"run"`
	Tables map[string]int64 `json:"tables"`
}

// Status reports the pipeline run and table row counts.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	if h.status == nil {
		respondError(w, http.StatusServiceUnavailable, "PIPELINE_UNAVAILABLE", "Pipeline not configured", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := StatusResponse{Run: h.status.Status(), Tables: make(map[string]int64, len(h.tables))}
	if h.store != nil {
		for _, table := range h.tables {
			n, err := h.store.CountRows(ctx, table)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count rows", err)
				return
			}
			resp.Tables[table] = n
		}
	}

	respondSuccess(w, resp, started)
}
