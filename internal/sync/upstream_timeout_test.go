// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/jadual/internal/config"
	"github.com/tomtom215/jadual/internal/models"
	"github.com/tomtom215/jadual/internal/upstream"
)

// A slow response on one item is logged and skipped; the job moves on to
// the next session instead of aborting the run.
func TestCourses_ClientTimeoutSkipsItem(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(300 * time.Millisecond):
			}
			return
		}
		_, _ = fmt.Fprint(w, `[{"kod_subjek":"SECJ3104","nama_subjek":"APPLICATIONS DEVELOPMENT"}]`)
	}))
	defer srv.Close()

	client := upstream.NewClient(&config.UpstreamConfig{
		BaseURL:    srv.URL + "/ttms/web_man_webservice_json.cgi",
		ElevateURL: srv.URL + "/ttms/auth-admin.php",
		Timeout:    100 * time.Millisecond,
	})
	store := &fakeStore{sessions: []models.AcademicSession{
		academicSession("2023/2024", 1),
		academicSession("2023/2024", 2),
	}}
	deps := Deps{Store: store, Upstream: client, Options: testOptions(), Sleep: noSleep}

	err := NewCourses(deps).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v (fatal=%v), want nil", err, IsFatal(err))
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("upstream calls = %d, want 2", got)
	}
	if len(store.insertedCourses) != 1 || store.insertedCourses[0].Code != "SECJ3104" {
		t.Errorf("inserted = %+v, want the second session's course", store.insertedCourses)
	}
}

func TestIsFatal_Timeouts(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "client timeout", err: fmt.Errorf("subjek: HTTP request failed: %w", upstream.ErrRequestTimeout), want: false},
		{name: "run deadline", err: fmt.Errorf("subjek: %w", context.DeadlineExceeded), want: true},
		{name: "run cancelled", err: context.Canceled, want: true},
		{name: "transport", err: errors.New("connection reset"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.want {
				t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
