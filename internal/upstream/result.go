// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package upstream

import "errors"

// Outcome classifies a completed upstream call.
type Outcome int

const (
	// OutcomeOK means a non-empty array of records was returned.
	OutcomeOK Outcome = iota
	// OutcomeEmpty means the entity answered with [].
	OutcomeEmpty
	// OutcomeUpstreamError means the call completed but TTMS reported a
	// failure: a non-2xx status or a JSON null body.
	OutcomeUpstreamError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeUpstreamError:
		return "upstream_error"
	default:
		return "unknown"
	}
}

var (
	// ErrUpstreamStatus is wrapped by UpstreamError results for non-2xx responses.
	ErrUpstreamStatus = errors.New("upstream returned non-2xx status")

	// ErrNullBody is wrapped by UpstreamError results for a JSON null body.
	ErrNullBody = errors.New("upstream returned null")

	// ErrRequestTimeout is returned when the HTTP client timeout expires
	// while the caller's context is still live. It is an item failure, not
	// a cancellation of the run.
	ErrRequestTimeout = errors.New("upstream request timed out")
)

// Result is the tagged outcome of one upstream call: Ok(records), Empty or
// UpstreamError(cause). It is only meaningful when the accompanying Go error
// is nil; a Go error means the call itself failed (transport, undecodable
// body) and is what the session manager treats as an expired session.
type Result[T any] struct {
	outcome Outcome
	records []T
	err     error
}

// Ok wraps records. An empty slice yields Empty.
func Ok[T any](records []T) Result[T] {
	if len(records) == 0 {
		return Empty[T]()
	}
	return Result[T]{outcome: OutcomeOK, records: records}
}

// Empty is the result of an empty array.
func Empty[T any]() Result[T] {
	return Result[T]{outcome: OutcomeEmpty}
}

// Failed is the UpstreamError result.
func Failed[T any](cause error) Result[T] {
	return Result[T]{outcome: OutcomeUpstreamError, err: cause}
}

// Outcome returns the tag.
func (r Result[T]) Outcome() Outcome { return r.outcome }

// Records returns the records of an Ok result, nil otherwise.
func (r Result[T]) Records() []T { return r.records }

// Err returns the cause of an UpstreamError result, nil otherwise.
func (r Result[T]) Err() error { return r.err }

func (r Result[T]) IsOK() bool            { return r.outcome == OutcomeOK }
func (r Result[T]) IsEmpty() bool         { return r.outcome == OutcomeEmpty }
func (r Result[T]) IsUpstreamError() bool { return r.outcome == OutcomeUpstreamError }

// First returns the first record of an Ok result.
func (r Result[T]) First() (T, bool) {
	var zero T
	if len(r.records) == 0 {
		return zero, false
	}
	return r.records[0], true
}
