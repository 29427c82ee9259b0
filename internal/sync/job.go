// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package sync

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/jadual/internal/logging"
	"github.com/tomtom215/jadual/internal/metrics"
	"github.com/tomtom215/jadual/internal/validation"
)

// job carries what every synchronizer shares.
type job struct {
	name string
	deps Deps
}

func (j job) Name() string { return j.name }

func (j job) log(ctx context.Context) *zerolog.Logger {
	return logging.Ctx(ctx)
}

// failed counts a non-fatal item failure and returns an error event for the
// caller to decorate.
func (j job) failed(ctx context.Context, err error) *zerolog.Event {
	metrics.RecordSyncItem(j.name, metrics.OutcomeFailed)
	return j.log(ctx).Error().Err(err)
}

// inserted records written rows and logs a persistence error, if any.
// Row errors never stop the batch.
func (j job) inserted(ctx context.Context, n int64, err error) {
	metrics.RecordRowsInserted(j.name, n)
	if err != nil {
		j.log(ctx).Error().Err(err).Int64("inserted", n).Msg("Some rows were not stored")
	}
}

// valid validates a record and logs it as dropped when it fails.
func (j job) valid(ctx context.Context, record any, what string) bool {
	if verr := validation.ValidateStruct(record); verr != nil {
		metrics.RecordSyncItem(j.name, metrics.OutcomeInvalid)
		j.log(ctx).Warn().Strs("fields", verr.Fields()).Str("reason", verr.Error()).Msgf("Dropping invalid %s", what)
		return false
	}
	return true
}

func (j job) done(ctx context.Context) {
	j.log(ctx).Info().Msg("Done")
}
