// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/jadual/internal/metrics"
	"github.com/tomtom215/jadual/internal/upstream"
)

// ErrPageFailed means upstream answered a page with an UpstreamError.
// The paginator stops; the partial page is not retried.
var ErrPageFailed = errors.New("page fetch failed")

// PageFunc fetches one page.
type PageFunc[T any] func(ctx context.Context, offset, limit int) (upstream.Result[T], error)

// PageSink persists one non-empty page before the next one is fetched.
type PageSink[T any] func(ctx context.Context, page []T, offset int) error

// PageStats summarizes a paginator run.
type PageStats struct {
	Pages   int
	Records int
}

// Paginator walks an offset/limit listing with a fixed delay before every
// call. A page shorter than Limit (including an empty one) ends the walk.
type Paginator[T any] struct {
	Entity string
	Limit  int
	Delay  time.Duration
	Sleep  SleepFunc
}

// Run fetches pages until a short page, handing each page to sink.
//
// A fetch error is returned unchanged so fatal session errors bubble up.
// An UpstreamError page returns an error wrapping ErrPageFailed.
func (p Paginator[T]) Run(ctx context.Context, fetch PageFunc[T], sink PageSink[T]) (PageStats, error) {
	var stats PageStats

	limit := p.Limit
	if limit < 1 {
		limit = upstream.DefaultStudentPageSize
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	for offset := 0; ; offset += limit {
		if err := sleep(ctx, p.Delay); err != nil {
			return stats, err
		}

		res, err := fetch(ctx, offset, limit)
		if err != nil {
			return stats, err
		}
		stats.Pages++
		metrics.PaginatorPages.WithLabelValues(p.Entity).Inc()

		if res.IsUpstreamError() {
			return stats, fmt.Errorf("%w at offset %d: %w", ErrPageFailed, offset, res.Err())
		}

		records := res.Records()
		stats.Records += len(records)
		if len(records) > 0 {
			if err := sink(ctx, records, offset); err != nil {
				return stats, err
			}
		}

		if len(records) < limit {
			return stats, nil
		}
	}
}
