// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

// Package session owns the elevated TTMS session used by privileged entities.
//
// A session goes Unauthenticated -> Authenticated (login) -> Elevated
// (auth-admin.php). Any failed call made under the session is treated as an
// expiry: the manager logs in again and retries the same unit of work, up to
// a bounded number of consecutive failures.
//
// Authentication failures are fatal. TTMS locks accounts on repeated bad
// logins, so a failed login or elevation is never retried.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tomtom215/jadual/internal/logging"
	"github.com/tomtom215/jadual/internal/metrics"
	"github.com/tomtom215/jadual/internal/models/ttms"
	"github.com/tomtom215/jadual/internal/upstream"
)

var (
	// ErrAuthentication means login or elevation failed. Fatal for the run.
	ErrAuthentication = errors.New("ttms authentication failed")

	// ErrRetryBudgetExhausted means consecutive session failures reached the budget.
	ErrRetryBudgetExhausted = errors.New("session retry budget exhausted")
)

// DefaultRetryBudget is the number of consecutive failures tolerated.
const DefaultRetryBudget = 3

// State is the lifecycle state of the managed session.
type State int

const (
	Unauthenticated State = iota
	Authenticated
	Elevated
	Expired
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case Elevated:
		return "elevated"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Authenticator is the subset of upstream.API needed to establish a session.
type Authenticator interface {
	Login(ctx context.Context, login, password string) (upstream.Result[ttms.Authentication], error)
	ElevateSession(ctx context.Context, sessionID string) (upstream.Result[ttms.Elevation], error)
}

// Credentials are the scraper account used to log in.
type Credentials struct {
	Login    string
	Password string
}

// Manager holds one elevated session and its consecutive-failure counter.
//
// Thread Safety: Do serializes callers. Accessors may be called from inside fn.
type Manager struct {
	auth   Authenticator
	creds  Credentials
	budget int

	doMu sync.Mutex // serializes Do

	mu        sync.Mutex
	state     State
	sessionID string
	failures  int
}

// NewManager creates a manager. A budget below 1 falls back to DefaultRetryBudget.
func NewManager(auth Authenticator, creds Credentials, budget int) *Manager {
	if budget < 1 {
		budget = DefaultRetryBudget
	}
	return &Manager{
		auth:   auth,
		creds:  creds,
		budget: budget,
		state:  Unauthenticated,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SessionID returns the elevated session ID, or "" when not elevated.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Elevated {
		return ""
	}
	return m.sessionID
}

// Failures returns the current consecutive-failure count.
func (m *Manager) Failures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures
}

// Authenticate logs in and returns the base session ID.
func (m *Manager) Authenticate(ctx context.Context, identity, secret string) (string, error) {
	res, err := m.auth.Login(ctx, identity, secret)
	if err != nil {
		return "", fmt.Errorf("%w: login: %w", ErrAuthentication, err)
	}
	if res.IsUpstreamError() {
		return "", fmt.Errorf("%w: login: %w", ErrAuthentication, res.Err())
	}
	rec, ok := res.First()
	if !ok || rec.SessionID == "" {
		return "", fmt.Errorf("%w: login returned no session", ErrAuthentication)
	}

	m.mu.Lock()
	m.state = Authenticated
	m.sessionID = rec.SessionID
	m.mu.Unlock()

	logging.Ctx(ctx).Debug().Str("login_name", rec.LoginName).Msg("Logged in to TTMS")
	return rec.SessionID, nil
}

// Elevate upgrades a base session to an admin session.
func (m *Manager) Elevate(ctx context.Context, baseID string) (string, error) {
	res, err := m.auth.ElevateSession(ctx, baseID)
	if err != nil {
		return "", fmt.Errorf("%w: elevate: %w", ErrAuthentication, err)
	}
	if res.IsUpstreamError() {
		return "", fmt.Errorf("%w: elevate: %w", ErrAuthentication, res.Err())
	}
	rec, ok := res.First()
	if !ok || rec.SessionID == "" {
		return "", fmt.Errorf("%w: elevation returned no session", ErrAuthentication)
	}

	m.mu.Lock()
	m.state = Elevated
	m.sessionID = rec.SessionID
	m.mu.Unlock()

	return rec.SessionID, nil
}

// Establish runs a full login+elevate cycle with the configured credentials.
func (m *Manager) Establish(ctx context.Context) (string, error) {
	baseID, err := m.Authenticate(ctx, m.creds.Login, m.creds.Password)
	if err != nil {
		return "", err
	}
	return m.Elevate(ctx, baseID)
}

// Do runs fn with an elevated session ID.
//
// An error from fn marks the session Expired and counts one failure. Below
// the budget the session is re-established and fn runs again for the same
// unit of work; at the budget Do returns an error wrapping
// ErrRetryBudgetExhausted. A successful fn resets the counter, so the budget
// bounds consecutive failures across calls. Context cancellation is returned
// as-is and does not consume budget.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context, sessionID string) error) error {
	m.doMu.Lock()
	defer m.doMu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if state := m.State(); state != Elevated {
			if state == Expired {
				metrics.SessionReauthentications.Inc()
				logging.Ctx(ctx).Warn().Int("failures", m.Failures()).Int("budget", m.budget).Msg("Session expired, re-authenticating")
			}
			if _, err := m.Establish(ctx); err != nil {
				m.mu.Lock()
				m.state = Unauthenticated
				m.sessionID = ""
				m.mu.Unlock()
				return err
			}
		}

		err := fn(ctx, m.SessionID())
		if err == nil {
			m.mu.Lock()
			m.failures = 0
			m.mu.Unlock()
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		m.mu.Lock()
		m.state = Expired
		m.failures++
		failures := m.failures
		m.mu.Unlock()

		if failures >= m.budget {
			metrics.SessionBudgetExhausted.Inc()
			return fmt.Errorf("%w after %d consecutive failures: %w", ErrRetryBudgetExhausted, failures, err)
		}
		logging.Ctx(ctx).Debug().Err(err).Int("failures", failures).Msg("Session call failed")
	}
}

// Reset drops the held session and clears the failure counter. The pipeline
// calls it at the start of every run.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Unauthenticated
	m.sessionID = ""
	m.failures = 0
}

// Fetch runs one elevated upstream call under m.Do and returns its Result.
// Go errors from call count against the retry budget; UpstreamError results
// are returned to the caller untouched.
func Fetch[T any](ctx context.Context, m *Manager, call func(ctx context.Context, sessionID string) (upstream.Result[T], error)) (upstream.Result[T], error) {
	var res upstream.Result[T]
	err := m.Do(ctx, func(ctx context.Context, sessionID string) error {
		r, err := call(ctx, sessionID)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	return res, err
}
