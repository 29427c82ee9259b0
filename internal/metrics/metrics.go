// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

// Package metrics exposes Prometheus instrumentation for the sync pipeline:
// store query latency, upstream request outcomes, circuit breaker state,
// session re-authentication and per-job progress.
//
// All collectors are registered on the default registry through promauto and
// served by the ops endpoint at /metrics in daemon mode.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by upstream and per-item metrics.
const (
	OutcomeOK            = "ok"
	OutcomeEmpty         = "empty"
	OutcomeUpstreamError = "upstream_error"
	OutcomeFailed        = "failed"
	OutcomeInvalid       = "invalid"
	OutcomeSkipped       = "skipped"
)

var (
	// Store Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jadual_db_query_duration_seconds",
			Help:    "Duration of store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jadual_db_query_errors_total",
			Help: "Total number of store query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Upstream Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jadual_upstream_requests_total",
			Help: "Total number of TTMS requests by entity and outcome",
		},
		[]string{"entity", "outcome"}, // outcome: ok, empty, upstream_error, failed
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jadual_upstream_request_duration_seconds",
			Help:    "Duration of TTMS requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"entity"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Session Metrics
	SessionReauthentications = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jadual_session_reauthentications_total",
			Help: "Total number of login+elevate cycles after a session expiry",
		},
	)

	SessionBudgetExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jadual_session_retry_budget_exhausted_total",
			Help: "Total number of runs aborted after exhausting the re-authentication budget",
		},
	)

	// Sync Metrics
	SyncItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jadual_sync_items_total",
			Help: "Units of work processed per job by outcome",
		},
		[]string{"job", "outcome"},
	)

	SyncRowsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jadual_sync_rows_inserted_total",
			Help: "Rows newly written to the store per job",
		},
		[]string{"job"},
	)

	SyncRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jadual_sync_run_duration_seconds",
			Help:    "Duration of a job run in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800, 3600, 7200},
		},
		[]string{"job"},
	)

	SyncRunErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jadual_sync_run_errors_total",
			Help: "Job runs that ended with a fatal error",
		},
		[]string{"job"},
	)

	SyncLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jadual_sync_last_success_timestamp",
			Help: "Unix timestamp of the last successful run per job",
		},
		[]string{"job"},
	)

	PaginatorPages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jadual_paginator_pages_total",
			Help: "Pages fetched by the offset paginator",
		},
		[]string{"entity"},
	)

	IdentityCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jadual_identity_cache_hits_total",
			Help: "Students resolved from the roster cache without an upstream call",
		},
	)

	// Operations endpoint
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jadual_api_requests_total",
			Help: "Requests served by the operations endpoint",
		},
		[]string{"route", "status"},
	)
)

// RecordDBQuery records a store query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordUpstreamRequest records one TTMS call.
func RecordUpstreamRequest(entity, outcome string, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(entity, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(entity).Observe(duration.Seconds())
}

// RecordSyncItem records the outcome of one unit of work inside a job.
func RecordSyncItem(job, outcome string) {
	SyncItemsTotal.WithLabelValues(job, outcome).Inc()
}

// RecordRowsInserted adds newly written rows for a job. Zero is a no-op.
func RecordRowsInserted(job string, n int64) {
	if n > 0 {
		SyncRowsInserted.WithLabelValues(job).Add(float64(n))
	}
}

// RecordSyncRun records a finished job run
func RecordSyncRun(job string, duration time.Duration, err error) {
	SyncRunDuration.WithLabelValues(job).Observe(duration.Seconds())
	if err != nil {
		SyncRunErrors.WithLabelValues(job).Inc()
		return
	}
	SyncLastSuccess.WithLabelValues(job).Set(float64(time.Now().Unix()))
}

// RecordAPIRequest counts one operations-endpoint request.
func RecordAPIRequest(route string, status int) {
	APIRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
