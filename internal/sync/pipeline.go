// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package sync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	gosync "sync"
	"time"

	"github.com/tomtom215/jadual/internal/config"
	"github.com/tomtom215/jadual/internal/logging"
	"github.com/tomtom215/jadual/internal/metrics"
)

// ErrUnknownJob is returned for a job name outside config.JobOrder.
var ErrUnknownJob = errors.New("unknown sync job")

// ErrRunInProgress is returned when Run is called while a run is active.
var ErrRunInProgress = errors.New("sync run already in progress")

// Pipeline runs the selected synchronizers in dependency order.
//
// Each run gets a fresh correlation ID, a reset session and a new identity
// cache. A job that fails without a fatal error is recorded and the run
// moves on; a fatal error stops the run and is returned.
type Pipeline struct {
	deps Deps
	jobs []string

	runMu gosync.Mutex

	mu     gosync.RWMutex
	status RunStatus
}

// NewPipeline creates a pipeline for job, which is config.JobAll or one of
// config.JobOrder.
func NewPipeline(deps Deps, job string) (*Pipeline, error) {
	var jobs []string
	switch {
	case job == "" || job == config.JobAll:
		jobs = slices.Clone(config.JobOrder)
	case slices.Contains(config.JobOrder, job):
		jobs = []string{job}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownJob, job)
	}

	p := &Pipeline{deps: deps, jobs: jobs}
	p.status.Jobs = pendingJobs(jobs)
	return p, nil
}

// Jobs returns the jobs this pipeline runs, in order.
func (p *Pipeline) Jobs() []string {
	return slices.Clone(p.jobs)
}

// Status returns a snapshot of the current or last run.
func (p *Pipeline) Status() RunStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status.clone()
}

// Run executes one pipeline run. It returns ErrRunInProgress instead of
// waiting when another run is active.
func (p *Pipeline) Run(ctx context.Context) error {
	if !p.runMu.TryLock() {
		return ErrRunInProgress
	}
	defer p.runMu.Unlock()

	ctx = logging.ContextWithNewCorrelationID(ctx)
	started := time.Now()
	p.begin(logging.CorrelationIDFromContext(ctx), started)

	if p.deps.Session != nil {
		p.deps.Session.Reset()
	}
	synchronizers := p.build()

	logging.Ctx(ctx).Info().Strs("jobs", p.jobs).Msg("Starting sync run")

	var runErr error
	for i, s := range synchronizers {
		jobCtx := logging.ContextWithJob(ctx, s.Name())
		jobStart := time.Now()
		p.setJob(i, JobStatus{Job: s.Name(), State: JobRunning, StartedAt: timePtr(jobStart)})

		err := s.Run(jobCtx)
		elapsed := time.Since(jobStart)
		metrics.RecordSyncRun(s.Name(), elapsed, err)

		st := JobStatus{
			Job:        s.Name(),
			State:      JobSucceeded,
			StartedAt:  timePtr(jobStart),
			FinishedAt: timePtr(time.Now()),
			DurationMS: elapsed.Milliseconds(),
		}
		if err != nil {
			st.State = JobFailed
			st.Error = err.Error()
		}
		p.setJob(i, st)

		if err == nil {
			continue
		}
		if IsFatal(err) {
			logging.Ctx(jobCtx).Error().Err(err).Dur("elapsed", elapsed).Msg("Sync run aborted")
			p.abortRemaining(i + 1)
			runErr = fmt.Errorf("%s: %w", s.Name(), err)
			break
		}
		logging.Ctx(jobCtx).Error().Err(err).Dur("elapsed", elapsed).Msg("Job failed, continuing with next job")
	}

	p.finish(runErr)
	logging.Ctx(ctx).Info().Dur("elapsed", time.Since(started)).Bool("aborted", runErr != nil).Msg("Sync run finished")
	return runErr
}

// build creates the synchronizers of one run.
func (p *Pipeline) build() []Synchronizer {
	cache := NewIdentityCache()
	out := make([]Synchronizer, 0, len(p.jobs))
	for _, name := range p.jobs {
		out = append(out, p.newSynchronizer(name, cache))
	}
	return out
}

func (p *Pipeline) newSynchronizer(name string, cache *IdentityCache) Synchronizer {
	switch name {
	case config.JobSessions:
		return NewSessions(p.deps)
	case config.JobCourses:
		return NewCourses(p.deps)
	case config.JobCourseSections:
		return NewCourseSections(p.deps)
	case config.JobSchedules:
		return NewSchedules(p.deps)
	case config.JobLecturers:
		return NewLecturers(p.deps)
	case config.JobStudents:
		return NewStudents(p.deps)
	case config.JobRegistrations:
		return NewRegistrations(p.deps)
	case config.JobIdentityBackfill:
		return NewIdentityBackfill(p.deps, cache)
	case config.JobVenues:
		return NewVenues(p.deps)
	}
	// unreachable: NewPipeline only accepts names from config.JobOrder
	panic("sync: no synchronizer for job " + name)
}

func pendingJobs(jobs []string) []JobStatus {
	out := make([]JobStatus, len(jobs))
	for i, j := range jobs {
		out[i] = JobStatus{Job: j, State: JobPending}
	}
	return out
}

func (p *Pipeline) begin(correlationID string, started time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = RunStatus{
		CorrelationID: correlationID,
		Running:       true,
		StartedAt:     timePtr(started),
		Runs:          p.status.Runs + 1,
		Jobs:          pendingJobs(p.jobs),
	}
}

func (p *Pipeline) setJob(i int, st JobStatus) {
	p.mu.Lock()
	p.status.Jobs[i] = st
	p.mu.Unlock()
}

func (p *Pipeline) abortRemaining(from int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := from; i < len(p.status.Jobs); i++ {
		p.status.Jobs[i].State = JobAborted
	}
}

func (p *Pipeline) finish(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Running = false
	p.status.FinishedAt = timePtr(time.Now())
	if err != nil {
		p.status.Error = err.Error()
	}
}
