// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

/*
Package sync mirrors the TTMS web service into the relational store.

The pipeline is a fixed sequence of synchronizers, one per entity. Later
stages read rows written by earlier ones, so the order is part of the
contract:

	sessions -> courses -> course-sections -> schedules -> lecturers ->
	students -> registrations -> identity-backfill -> venues

Each synchronizer reads its reference set from the store, walks it in read
order with a fixed delay before every upstream call, maps and validates the
upstream records, and writes them with insert-if-absent semantics. Each
item's rows are committed before the next fetch, so a crash loses at most
one in-flight item and a re-run never duplicates anything.

Failure Classes:

  - Authentication failure (session.ErrAuthentication): aborts the run.
  - Session expiry: handled inside session.Manager.Do, which re-establishes
    the elevated session and retries the same unit of work until the retry
    budget is spent (session.ErrRetryBudgetExhausted aborts the run).
  - Upstream data absence (UpstreamError or Empty results): logged, counted,
    and the loop moves to the next item.
  - Data inconsistency: invalid records are dropped, duplicate schedule
    slots are collapsed (first occurrence wins) and unresolvable lecturer or
    venue links degrade to NULL.
  - Store row failures: joined errors, logged per item, batch continues.

IsFatal is the single abort decision used by every loop.

Usage Example:

	deps := sync.Deps{
	    Store:    db,
	    Upstream: upstream.NewCircuitBreakerClient(upstream.NewClient(&cfg.Upstream)),
	    Session:  session.NewManager(client, creds, cfg.Sync.RetryBudget),
	    Options:  sync.OptionsFromConfig(cfg.Sync),
	}

	pipeline, err := sync.NewPipeline(deps, cfg.Sync.Job)
	if err != nil {
	    return err
	}
	if err := pipeline.Run(ctx); err != nil {
	    logging.Fatal().Err(err).Msg("Sync aborted")
	}
*/
package sync
