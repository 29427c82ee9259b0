// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tomtom215/jadual/internal/models/ttms"
	"github.com/tomtom215/jadual/internal/upstream"
)

// fakeAuth counts login/elevate cycles and hands out numbered session IDs.
type fakeAuth struct {
	logins     int
	elevations int

	loginErr     error
	loginResult  *upstream.Result[ttms.Authentication]
	elevateEmpty bool
}

func (f *fakeAuth) Login(_ context.Context, login, password string) (upstream.Result[ttms.Authentication], error) {
	f.logins++
	if f.loginErr != nil {
		return upstream.Result[ttms.Authentication]{}, f.loginErr
	}
	if f.loginResult != nil {
		return *f.loginResult, nil
	}
	return upstream.Ok([]ttms.Authentication{{SessionID: fmt.Sprintf("base-%d", f.logins), LoginName: login}}), nil
}

func (f *fakeAuth) ElevateSession(_ context.Context, sessionID string) (upstream.Result[ttms.Elevation], error) {
	f.elevations++
	if f.elevateEmpty {
		return upstream.Empty[ttms.Elevation](), nil
	}
	return upstream.Ok([]ttms.Elevation{{SessionID: "admin-" + sessionID}}), nil
}

func newTestManager(auth *fakeAuth) *Manager {
	return NewManager(auth, Credentials{Login: "A12CS0001", Password: "pw"}, 3)
}

func TestDo_PermanentFailureExhaustsBudget(t *testing.T) {
	auth := &fakeAuth{}
	m := newTestManager(auth)

	calls := 0
	err := m.Do(context.Background(), func(context.Context, string) error {
		calls++
		return errors.New("html login page")
	})

	if !errors.Is(err, ErrRetryBudgetExhausted) {
		t.Fatalf("err = %v, want ErrRetryBudgetExhausted", err)
	}
	if calls != 3 {
		t.Errorf("fn calls = %d, want 3", calls)
	}
	if auth.logins != 3 || auth.elevations != 3 {
		t.Errorf("login cycles = %d/%d, want 3/3", auth.logins, auth.elevations)
	}
	if m.State() != Expired {
		t.Errorf("state = %v, want expired", m.State())
	}
}

func TestDo_RecoversOnRetryAndResetsCounter(t *testing.T) {
	auth := &fakeAuth{}
	m := newTestManager(auth)

	var seen []string
	err := m.Do(context.Background(), func(_ context.Context, sid string) error {
		seen = append(seen, sid)
		if len(seen) == 1 {
			return errors.New("expired")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("fn calls = %d, want 2", len(seen))
	}
	if seen[0] != "admin-base-1" || seen[1] != "admin-base-2" {
		t.Errorf("session IDs = %v, want a fresh session on retry", seen)
	}
	if m.Failures() != 0 {
		t.Errorf("failures = %d, want 0 after success", m.Failures())
	}
	if m.State() != Elevated {
		t.Errorf("state = %v, want elevated", m.State())
	}
}

func TestDo_ReusesElevatedSession(t *testing.T) {
	auth := &fakeAuth{}
	m := newTestManager(auth)

	for i := 0; i < 5; i++ {
		if err := m.Do(context.Background(), func(context.Context, string) error { return nil }); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if auth.logins != 1 {
		t.Errorf("logins = %d, want 1", auth.logins)
	}
}

func TestDo_BudgetCountsConsecutiveFailuresAcrossCalls(t *testing.T) {
	auth := &fakeAuth{}
	m := newTestManager(auth)
	ctx := context.Background()

	// two failures then success: counter back to 0
	n := 0
	if err := m.Do(ctx, func(context.Context, string) error {
		n++
		if n < 3 {
			return errors.New("expired")
		}
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Failures() != 0 {
		t.Fatalf("failures = %d, want 0", m.Failures())
	}

	// a later unit still gets the full budget
	calls := 0
	err := m.Do(ctx, func(context.Context, string) error {
		calls++
		return errors.New("expired")
	})
	if !errors.Is(err, ErrRetryBudgetExhausted) || calls != 3 {
		t.Errorf("err = %v, calls = %d; want exhaustion after 3", err, calls)
	}
}

func TestDo_AuthenticationFailureIsFatal(t *testing.T) {
	tests := []struct {
		name string
		auth *fakeAuth
	}{
		{name: "transport error", auth: &fakeAuth{loginErr: errors.New("connection refused")}},
		{name: "empty login", auth: &fakeAuth{loginResult: ptr(upstream.Empty[ttms.Authentication]())}},
		{name: "upstream error", auth: &fakeAuth{loginResult: ptr(upstream.Failed[ttms.Authentication](errors.New("HTTP 500")))}},
		{name: "blank session id", auth: &fakeAuth{loginResult: ptr(upstream.Ok([]ttms.Authentication{{LoginName: "x"}}))}},
		{name: "elevation empty", auth: &fakeAuth{elevateEmpty: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(tt.auth)
			called := false
			err := m.Do(context.Background(), func(context.Context, string) error {
				called = true
				return nil
			})
			if !errors.Is(err, ErrAuthentication) {
				t.Fatalf("err = %v, want ErrAuthentication", err)
			}
			if called {
				t.Error("fn must not run without a session")
			}
			if tt.auth.logins != 1 {
				t.Errorf("logins = %d, want exactly 1 (no retry)", tt.auth.logins)
			}
			if m.State() != Unauthenticated {
				t.Errorf("state = %v, want unauthenticated", m.State())
			}
		})
	}
}

func TestDo_ReauthFailureAfterExpiryIsFatal(t *testing.T) {
	auth := &fakeAuth{}
	m := newTestManager(auth)

	err := m.Do(context.Background(), func(context.Context, string) error {
		auth.loginErr = errors.New("account locked")
		return errors.New("expired")
	})
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
	if auth.logins != 2 {
		t.Errorf("logins = %d, want 2", auth.logins)
	}
}

func TestDo_ContextCancellationDoesNotConsumeBudget(t *testing.T) {
	auth := &fakeAuth{}
	m := newTestManager(auth)
	ctx, cancel := context.WithCancel(context.Background())

	err := m.Do(ctx, func(context.Context, string) error {
		cancel()
		return errors.New("request aborted")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if m.Failures() != 0 {
		t.Errorf("failures = %d, want 0", m.Failures())
	}
}

func TestFetch_ReturnsResult(t *testing.T) {
	m := newTestManager(&fakeAuth{})

	res, err := Fetch(context.Background(), m, func(_ context.Context, sid string) (upstream.Result[ttms.Lecturer], error) {
		return upstream.Ok([]ttms.Lecturer{{Name: "DR ALI", WorkerNo: 1234}}), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec, ok := res.First(); !ok || rec.WorkerNo != 1234 {
		t.Errorf("record = %+v", rec)
	}

	res, err = Fetch(context.Background(), m, func(context.Context, string) (upstream.Result[ttms.Lecturer], error) {
		return upstream.Failed[ttms.Lecturer](upstream.ErrNullBody), nil
	})
	if err != nil {
		t.Fatalf("UpstreamError must not be a Go error: %v", err)
	}
	if !res.IsUpstreamError() || m.Failures() != 0 {
		t.Errorf("outcome = %v, failures = %d", res.Outcome(), m.Failures())
	}
}

func TestReset(t *testing.T) {
	m := newTestManager(&fakeAuth{})
	_ = m.Do(context.Background(), func(context.Context, string) error { return errors.New("x") })
	m.Reset()
	if m.State() != Unauthenticated || m.Failures() != 0 || m.SessionID() != "" {
		t.Errorf("after Reset: state=%v failures=%d id=%q", m.State(), m.Failures(), m.SessionID())
	}
}

func ptr[T any](v T) *T { return &v }
