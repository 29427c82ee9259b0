// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	// correlationIDKey identifies one pipeline run across all of its jobs.
	correlationIDKey contextKey = "correlation_id"

	// jobKey names the synchronizer currently running.
	jobKey contextKey = "job"
)

// GenerateCorrelationID creates a new run identifier.
// Returns the first 8 characters of a UUID for readability.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// ContextWithCorrelationID returns a new context with the given correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// ContextWithNewCorrelationID returns a context with a newly generated correlation ID.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// CorrelationIDFromContext retrieves the correlation ID from context.
// Returns empty string if not present.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithJob tags the context with the synchronizer name.
func ContextWithJob(ctx context.Context, job string) context.Context {
	return context.WithValue(ctx, jobKey, job)
}

// JobFromContext retrieves the synchronizer name from context.
func JobFromContext(ctx context.Context) string {
	if job, ok := ctx.Value(jobKey).(string); ok {
		return job
	}
	return ""
}

// Ctx returns the global logger enriched with the correlation_id and job
// fields carried by ctx.
//
//	logging.Ctx(ctx).Info().Int("count", n).Msg("Inserted venues")
//	// {"level":"info","correlation_id":"abc12345","job":"venues","count":42,"message":"Inserted venues"}
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := Logger().With()
	if id := CorrelationIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("correlation_id", id)
	}
	if job := JobFromContext(ctx); job != "" {
		logCtx = logCtx.Str("job", job)
	}
	l := logCtx.Logger()
	return &l
}
