// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package sync

import "time"

// JobState is the state of one job within the last run.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
	JobAborted   JobState = "aborted"
)

// JobStatus reports one job of a run.
type JobStatus struct {
	Job        string     `json:"job"`
	State      JobState   `json:"state"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	DurationMS int64      `json:"duration_ms,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// RunStatus reports the current or last pipeline run.
type RunStatus struct {
	CorrelationID string      `json:"correlation_id,omitempty"`
	Running       bool        `json:"running"`
	StartedAt     *time.Time  `json:"started_at,omitempty"`
	FinishedAt    *time.Time  `json:"finished_at,omitempty"`
	Error         string      `json:"error,omitempty"`
	Runs          int         `json:"runs"`
	Jobs          []JobStatus `json:"jobs"`
}

func (s RunStatus) clone() RunStatus {
	out := s
	out.Jobs = append([]JobStatus(nil), s.Jobs...)
	return out
}

func timePtr(t time.Time) *time.Time { return &t }
