// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package sync

import (
	"context"
	"fmt"
	gosync "sync"

	"github.com/tomtom215/jadual/internal/config"
	"github.com/tomtom215/jadual/internal/metrics"
	"github.com/tomtom215/jadual/internal/models"
	"github.com/tomtom215/jadual/internal/models/ttms"
	"github.com/tomtom215/jadual/internal/session"
	"github.com/tomtom215/jadual/internal/upstream"
)

// IdentityCache remembers name -> national ID pairs seen on section rosters
// during one backfill run. It is not an authoritative store.
type IdentityCache struct {
	mu gosync.RWMutex
	m  map[string]string
}

// NewIdentityCache returns an empty cache.
func NewIdentityCache() *IdentityCache {
	return &IdentityCache{m: make(map[string]string)}
}

// Lookup returns the remembered ID for name.
func (c *IdentityCache) Lookup(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.m[name]
	return id, ok
}

// Remember stores name -> id, replacing an earlier entry. Blank names or IDs
// are ignored.
func (c *IdentityCache) Remember(name, id string) {
	if name == "" || id == "" {
		return
	}
	c.mu.Lock()
	c.m[name] = id
	c.mu.Unlock()
}

// Len returns the number of remembered names.
func (c *IdentityCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// IdentityBackfill fills in the national ID of students stored with the
// identity sentinel.
//
// For each such student one of their registrations is picked, the roster of
// that section is fetched (subjek_pelajar, elevated) and the student is
// matched by exact name. Every other roster member is remembered in the
// cache, so later students from the same section cost no upstream call.
type IdentityBackfill struct {
	job
	cache *IdentityCache
}

// NewIdentityBackfill creates the backfill synchronizer. A nil cache gets a
// fresh one.
func NewIdentityBackfill(deps Deps, cache *IdentityCache) *IdentityBackfill {
	if cache == nil {
		cache = NewIdentityCache()
	}
	return &IdentityBackfill{job: job{name: config.JobIdentityBackfill, deps: deps}, cache: cache}
}

// Cache returns the run's identity cache.
func (b *IdentityBackfill) Cache() *IdentityCache { return b.cache }

func (b *IdentityBackfill) Run(ctx context.Context) error {
	sentinel := b.deps.Options.IdentitySentinel
	students, err := b.deps.Store.ListStudentsMissingIdentity(ctx, sentinel)
	if err != nil {
		return fmt.Errorf("list students missing identity: %w", err)
	}

	for i, st := range students {
		position := progress(i, len(students))

		if id, ok := b.cache.Lookup(st.Name); ok {
			metrics.IdentityCacheHits.Inc()
			b.update(ctx, st, id, position)
			continue
		}

		if err := b.backfill(ctx, st, position); err != nil {
			return err
		}
	}

	b.log(ctx).Info().Int("cached", b.cache.Len()).Msg("Identity cache size")
	b.done(ctx)
	return nil
}

// backfill resolves one student through a section roster. Only fatal errors
// are returned.
func (b *IdentityBackfill) backfill(ctx context.Context, st models.Student, position string) error {
	log := b.log(ctx).With().Str("matric_no", st.MatricNo).Str("position", position).Logger()

	reg, found, err := b.deps.Store.FirstRegistration(ctx, st.MatricNo)
	if err != nil {
		b.failed(ctx, err).Str("matric_no", st.MatricNo).Msg("Failed to read registrations for student")
		return nil
	}
	if !found {
		metrics.RecordSyncItem(b.name, metrics.OutcomeSkipped)
		log.Info().Msg("No courses found for student")
		return nil
	}

	if err := b.deps.wait(ctx, b.deps.Options.Delay); err != nil {
		return err
	}

	res, err := session.Fetch(ctx, b.deps.Session, func(ctx context.Context, sessionID string) (upstream.Result[ttms.SectionStudent], error) {
		return b.deps.Upstream.FetchSectionStudents(ctx, sessionID, upstream.SectionQuery{
			Session:    reg.Session,
			Semester:   reg.Semester,
			CourseCode: reg.CourseCode,
			Section:    reg.Section,
		})
	})
	if err != nil {
		if IsFatal(err) {
			return err
		}
		b.failed(ctx, err).Str("matric_no", st.MatricNo).Msg("Failed to fetch section students")
		return nil
	}
	metrics.RecordSyncItem(b.name, outcomeLabel(res.Outcome()))
	if res.IsUpstreamError() {
		log.Error().Err(res.Err()).Str("course_code", reg.CourseCode).Str("section", reg.Section).Msg("Failed to fetch section students")
		return nil
	}

	var match string
	for _, member := range res.Records() {
		if member.IdentityNo == nil || *member.IdentityNo == "" {
			continue
		}
		if match == "" && member.Name == st.Name {
			match = *member.IdentityNo
		}
		b.cache.Remember(member.Name, *member.IdentityNo)
	}

	if match == "" {
		log.Warn().Int("roster", len(res.Records())).Msg("Student not found on section roster")
		return nil
	}
	b.update(ctx, st, match, position)
	return nil
}

func (b *IdentityBackfill) update(ctx context.Context, st models.Student, id, position string) {
	n, err := b.deps.Store.UpdateStudentIdentity(ctx, st.Name, id, b.deps.Options.IdentitySentinel)
	if err != nil {
		b.failed(ctx, err).Str("matric_no", st.MatricNo).Msg("Failed to update student identity")
		return
	}
	metrics.RecordRowsInserted(b.name, n)
	b.log(ctx).Info().Str("matric_no", st.MatricNo).Int64("updated", n).Msgf("Updated student %s with no kp ID %s", st.Name, position)
}
