// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/jadual/internal/logging"
	"github.com/tomtom215/jadual/internal/metrics"
	"github.com/tomtom215/jadual/internal/models/ttms"
)

// breakerName labels the breaker in logs and metrics.
const breakerName = "ttms-api"

// CircuitBreakerClient wraps an API with a circuit breaker so a TTMS outage
// fails fast instead of burning every remaining item's delay on timeouts.
//
// Only Go errors (transport failures, undecodable bodies) count as breaker
// failures. UpstreamError results are ordinary answers. Context cancellation
// never trips the breaker.
//
// An open breaker surfaces as a Go error, which the session manager treats
// like any other call failure.
type CircuitBreakerClient struct {
	client API
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient wraps client.
// Circuit breaker configuration:
// - Max 1 probe request in half-open state
// - 1 minute measurement window
// - 1 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 5 requests
func NewCircuitBreakerClient(client API) *CircuitBreakerClient {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		IsSuccessful: func(err error) bool {
			var done *callerDoneError
			return err == nil || errors.As(err, &done)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   breakerName,
	}
}

// State returns the current breaker state.
func (cbc *CircuitBreakerClient) State() gobreaker.State {
	return cbc.cb.State()
}

// StateName returns the breaker state as reported in logs and /healthz.
func (cbc *CircuitBreakerClient) StateName() string {
	return stateToString(cbc.cb.State())
}

// callerDoneError marks a failure that happened after the caller's context
// ended. The breaker does not count it.
type callerDoneError struct{ err error }

func (e *callerDoneError) Error() string { return e.err.Error() }
func (e *callerDoneError) Unwrap() error { return e.err }

// execute wraps an API call with circuit breaker protection
func (cbc *CircuitBreakerClient) execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(func() (interface{}, error) {
		res, err := fn()
		if err != nil && ctx.Err() != nil {
			return res, &callerDoneError{err: err}
		}
		return res, err
	})
	var done *callerDoneError
	if errors.As(err, &done) {
		err = done.err
	}

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
			counts := cbc.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)

	return result, nil
}

// castResult type-casts the circuit breaker result back to a Result.
func castResult[T any](result interface{}, err error) (Result[T], error) {
	if err != nil {
		return Result[T]{}, err
	}
	typed, ok := result.(Result[T])
	if !ok {
		return Result[T]{}, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func (cbc *CircuitBreakerClient) Login(ctx context.Context, login, password string) (Result[ttms.Authentication], error) {
	return castResult[ttms.Authentication](cbc.execute(ctx, func() (interface{}, error) {
		return cbc.client.Login(ctx, login, password)
	}))
}

func (cbc *CircuitBreakerClient) ElevateSession(ctx context.Context, sessionID string) (Result[ttms.Elevation], error) {
	return castResult[ttms.Elevation](cbc.execute(ctx, func() (interface{}, error) {
		return cbc.client.ElevateSession(ctx, sessionID)
	}))
}

func (cbc *CircuitBreakerClient) FetchSessions(ctx context.Context) (Result[ttms.Session], error) {
	return castResult[ttms.Session](cbc.execute(ctx, func() (interface{}, error) {
		return cbc.client.FetchSessions(ctx)
	}))
}

func (cbc *CircuitBreakerClient) FetchCourses(ctx context.Context, session string, semester int) (Result[ttms.Course], error) {
	return castResult[ttms.Course](cbc.execute(ctx, func() (interface{}, error) {
		return cbc.client.FetchCourses(ctx, session, semester)
	}))
}

func (cbc *CircuitBreakerClient) FetchCourseSections(ctx context.Context, session string, semester int) (Result[ttms.CourseSection], error) {
	return castResult[ttms.CourseSection](cbc.execute(ctx, func() (interface{}, error) {
		return cbc.client.FetchCourseSections(ctx, session, semester)
	}))
}

func (cbc *CircuitBreakerClient) FetchCourseTimetable(ctx context.Context, q TimetableQuery) (Result[ttms.CourseTimetable], error) {
	return castResult[ttms.CourseTimetable](cbc.execute(ctx, func() (interface{}, error) {
		return cbc.client.FetchCourseTimetable(ctx, q)
	}))
}

func (cbc *CircuitBreakerClient) FetchStudentCourses(ctx context.Context, matricNo string) (Result[ttms.SessionCourse], error) {
	return castResult[ttms.SessionCourse](cbc.execute(ctx, func() (interface{}, error) {
		return cbc.client.FetchStudentCourses(ctx, matricNo)
	}))
}

func (cbc *CircuitBreakerClient) FetchRooms(ctx context.Context, facultyCode, roomFilter string) (Result[ttms.FacultyRoom], error) {
	return castResult[ttms.FacultyRoom](cbc.execute(ctx, func() (interface{}, error) {
		return cbc.client.FetchRooms(ctx, facultyCode, roomFilter)
	}))
}

func (cbc *CircuitBreakerClient) FetchStudents(ctx context.Context, sessionID string, q StudentQuery) (Result[ttms.Student], error) {
	return castResult[ttms.Student](cbc.execute(ctx, func() (interface{}, error) {
		return cbc.client.FetchStudents(ctx, sessionID, q)
	}))
}

func (cbc *CircuitBreakerClient) FetchLecturers(ctx context.Context, sessionID, session string, semester int) (Result[ttms.Lecturer], error) {
	return castResult[ttms.Lecturer](cbc.execute(ctx, func() (interface{}, error) {
		return cbc.client.FetchLecturers(ctx, sessionID, session, semester)
	}))
}

func (cbc *CircuitBreakerClient) FetchSectionStudents(ctx context.Context, sessionID string, q SectionQuery) (Result[ttms.SectionStudent], error) {
	return castResult[ttms.SectionStudent](cbc.execute(ctx, func() (interface{}, error) {
		return cbc.client.FetchSectionStudents(ctx, sessionID, q)
	}))
}
