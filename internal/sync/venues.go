// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package sync

import (
	"context"

	"github.com/tomtom215/jadual/internal/config"
	"github.com/tomtom215/jadual/internal/metrics"
	"github.com/tomtom215/jadual/internal/models"
)

// Venues stores the rooms of one faculty (ruang) with their real capacity
// and type. Rooms already stored, including schedule placeholders, are left
// untouched.
type Venues struct{ job }

// NewVenues creates the venues synchronizer.
func NewVenues(deps Deps) *Venues {
	return &Venues{job{name: config.JobVenues, deps: deps}}
}

func (v *Venues) Run(ctx context.Context) error {
	faculty := v.deps.Options.VenueFaculty
	log := v.log(ctx).With().Str("faculty", faculty).Str("filter", v.deps.Options.VenueRoomFilter).Logger()

	if err := v.deps.wait(ctx, v.deps.Options.Delay); err != nil {
		return err
	}

	res, err := v.deps.Upstream.FetchRooms(ctx, faculty, v.deps.Options.VenueRoomFilter)
	if err != nil {
		if IsFatal(err) {
			return err
		}
		v.failed(ctx, err).Str("faculty", faculty).Msg("Failed to fetch venues")
		v.done(ctx)
		return nil
	}
	metrics.RecordSyncItem(v.name, outcomeLabel(res.Outcome()))
	if res.IsUpstreamError() {
		log.Error().Err(res.Err()).Msg("Failed to fetch venues")
		v.done(ctx)
		return nil
	}

	rows := make([]models.Venue, 0, len(res.Records()))
	for _, rec := range res.Records() {
		row := models.Venue{
			Code:      rec.Code,
			Name:      rec.Name,
			ShortName: rec.ShortName,
			Capacity:  rec.Capacity,
			Type:      models.VenueTypeFromJenis(rec.Kind),
		}
		if v.valid(ctx, &row, "venue") {
			rows = append(rows, row)
		}
	}

	n, err := v.deps.Store.InsertVenues(ctx, rows)
	v.inserted(ctx, n, err)

	log.Info().Int("count", len(res.Records())).Int64("inserted", n).Msgf("Inserted %d venue(s)", len(rows))
	v.done(ctx)
	return nil
}
