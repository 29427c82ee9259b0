// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

/*
client.go - TTMS JSON web service client

The TTMS web service is a single CGI endpoint selected by the "entity" query
parameter, plus a separate auth-admin.php script that elevates a login
session. Every entity answers with a bare JSON array.

Response Mapping:
  - 2xx with a non-empty array: Ok(records)
  - 2xx with []: Empty
  - non-2xx, or 2xx with a JSON null body: UpstreamError(cause)
  - transport failure or a body that is not a JSON array: Go error

The last case is how an expired session shows up (TTMS serves an HTML login
page), so callers running under the session manager must return the Go
error unchanged.

The client performs no retries and keeps no session state. An optional
token bucket (golang.org/x/time/rate) caps the global request rate.
*/

//nolint:staticcheck // File documentation, not package doc
package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/jadual/internal/config"
	"github.com/tomtom215/jadual/internal/metrics"
	"github.com/tomtom215/jadual/internal/models/ttms"
)

// maxErrorBodySize limits the maximum amount of response body read for error reporting
const maxErrorBodySize = 64 * 1024 // 64KB

// Entity names understood by the web service.
const (
	EntityAuthentication = "authentication"
	EntityElevation      = "auth-admin"
	EntitySessions       = "sesisemester"
	EntityCourses        = "subjek"
	EntityCourseSections = "subjek_seksyen"
	EntityTimetable      = "jadual_subjek"
	EntityStudents       = "pelajar"
	EntityLecturers      = "pensyarah"
	EntityStudentCourses = "pelajar_subjek"
	EntitySectionRoster  = "subjek_pelajar"
	EntityRooms          = "ruang"
)

// DefaultStudentPageSize is the page size the student listing was designed around.
const DefaultStudentPageSize = 50

// readBodyForError reads the response body for error reporting (max 64KB)
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// TimetableQuery selects jadual_subjek rows. CourseCode and Section are optional filters.
type TimetableQuery struct {
	Session    string
	Semester   int
	CourseCode string
	Section    string
}

// StudentQuery selects one page of the pelajar listing.
type StudentQuery struct {
	Session  string
	Semester int
	Limit    int
	Offset   int
}

// SectionQuery selects one section roster.
type SectionQuery struct {
	Session    string
	Semester   int
	CourseCode string
	Section    string
}

// API is the full set of TTMS operations. Client and CircuitBreakerClient
// implement it; sync code depends on the interface so tests can fake it.
//
// Methods taking a sessionID require an elevated session.
type API interface {
	Login(ctx context.Context, login, password string) (Result[ttms.Authentication], error)
	ElevateSession(ctx context.Context, sessionID string) (Result[ttms.Elevation], error)

	FetchSessions(ctx context.Context) (Result[ttms.Session], error)
	FetchCourses(ctx context.Context, session string, semester int) (Result[ttms.Course], error)
	FetchCourseSections(ctx context.Context, session string, semester int) (Result[ttms.CourseSection], error)
	FetchCourseTimetable(ctx context.Context, q TimetableQuery) (Result[ttms.CourseTimetable], error)
	FetchStudentCourses(ctx context.Context, matricNo string) (Result[ttms.SessionCourse], error)
	FetchRooms(ctx context.Context, facultyCode, roomFilter string) (Result[ttms.FacultyRoom], error)

	FetchStudents(ctx context.Context, sessionID string, q StudentQuery) (Result[ttms.Student], error)
	FetchLecturers(ctx context.Context, sessionID, session string, semester int) (Result[ttms.Lecturer], error)
	FetchSectionStudents(ctx context.Context, sessionID string, q SectionQuery) (Result[ttms.SectionStudent], error)
}

// Client talks to the TTMS web service over plain HTTP GET.
//
// Thread Safety: Safe for concurrent use. Each request creates its own HTTP request.
type Client struct {
	baseURL    string
	elevateURL string
	client     *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client from the upstream configuration.
func NewClient(cfg *config.UpstreamConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:    cfg.BaseURL,
		elevateURL: cfg.ElevateURL,
		client:     &http.Client{Timeout: timeout},
	}
	if cfg.MaxRequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.MaxRequestsPerSecond), 1)
	}
	return c
}

// entityURL builds the CGI URL for an entity call.
func (c *Client) entityURL(entity string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("entity", entity)
	return c.baseURL + "?" + params.Encode()
}

// get performs the request and returns the raw body of a 2xx response.
// A non-nil cause reports an UpstreamError; a non-nil err is a call failure.
func (c *Client) get(ctx context.Context, reqURL string) (body []byte, cause, err error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// url.Error embeds the full URL, which carries credentials for the
		// authentication entity.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, nil, transportError(ctx, "HTTP request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody := readBodyForError(resp.Body)
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrUpstreamStatus, resp.StatusCode, bytes.TrimSpace(errBody)), nil
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, transportError(ctx, "failed to read response body", err)
	}
	return body, nil, nil
}

// transportError classifies a failed exchange. Only the caller's own
// context ending is reported as a context error; an http.Client timeout
// also matches context.DeadlineExceeded, so its chain is cut and it
// becomes ErrRequestTimeout.
func transportError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var nerr interface{ Timeout() bool }
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%s: %w: %v", op, ErrRequestTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %v", op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// fetch performs one entity call and maps the response to a Result.
func fetch[T any](ctx context.Context, c *Client, entity, reqURL string) (Result[T], error) {
	start := time.Now()

	body, cause, err := c.get(ctx, reqURL)
	if err != nil {
		metrics.RecordUpstreamRequest(entity, metrics.OutcomeFailed, time.Since(start))
		return Result[T]{}, fmt.Errorf("%s: %w", entity, err)
	}
	if cause != nil {
		metrics.RecordUpstreamRequest(entity, metrics.OutcomeUpstreamError, time.Since(start))
		return Failed[T](fmt.Errorf("%s: %w", entity, cause)), nil
	}

	trimmed := bytes.TrimSpace(body)
	if bytes.Equal(trimmed, []byte("null")) {
		metrics.RecordUpstreamRequest(entity, metrics.OutcomeUpstreamError, time.Since(start))
		return Failed[T](fmt.Errorf("%s: %w", entity, ErrNullBody)), nil
	}

	var records []T
	if err := json.Unmarshal(trimmed, &records); err != nil {
		metrics.RecordUpstreamRequest(entity, metrics.OutcomeFailed, time.Since(start))
		return Result[T]{}, fmt.Errorf("%s: failed to decode response: %w", entity, err)
	}

	result := Ok(records)
	metrics.RecordUpstreamRequest(entity, result.Outcome().String(), time.Since(start))
	return result, nil
}

func semesterParams(session string, semester int) url.Values {
	params := url.Values{}
	params.Set("sesi", session)
	params.Set("semester", strconv.Itoa(semester))
	return params
}

// Login authenticates with the scraper's matric number and password.
func (c *Client) Login(ctx context.Context, login, password string) (Result[ttms.Authentication], error) {
	params := url.Values{}
	params.Set("login", login)
	params.Set("password", password)
	return fetch[ttms.Authentication](ctx, c, EntityAuthentication, c.entityURL(EntityAuthentication, params))
}

// ElevateSession upgrades a login session to the admin session used by
// privileged entities.
func (c *Client) ElevateSession(ctx context.Context, sessionID string) (Result[ttms.Elevation], error) {
	params := url.Values{}
	params.Set("session_id", sessionID)
	return fetch[ttms.Elevation](ctx, c, EntityElevation, c.elevateURL+"?"+params.Encode())
}

// FetchSessions lists every academic session/semester.
func (c *Client) FetchSessions(ctx context.Context) (Result[ttms.Session], error) {
	return fetch[ttms.Session](ctx, c, EntitySessions, c.entityURL(EntitySessions, nil))
}

// FetchCourses lists courses offered in a session/semester.
func (c *Client) FetchCourses(ctx context.Context, session string, semester int) (Result[ttms.Course], error) {
	return fetch[ttms.Course](ctx, c, EntityCourses, c.entityURL(EntityCourses, semesterParams(session, semester)))
}

// FetchCourseSections lists courses with their sections and lecturer names.
func (c *Client) FetchCourseSections(ctx context.Context, session string, semester int) (Result[ttms.CourseSection], error) {
	return fetch[ttms.CourseSection](ctx, c, EntityCourseSections, c.entityURL(EntityCourseSections, semesterParams(session, semester)))
}

// FetchCourseTimetable lists timetable slots, optionally for one course or section.
func (c *Client) FetchCourseTimetable(ctx context.Context, q TimetableQuery) (Result[ttms.CourseTimetable], error) {
	params := semesterParams(q.Session, q.Semester)
	if q.CourseCode != "" {
		params.Set("kod_subjek", q.CourseCode)
	}
	if q.Section != "" {
		params.Set("seksyen", q.Section)
	}
	return fetch[ttms.CourseTimetable](ctx, c, EntityTimetable, c.entityURL(EntityTimetable, params))
}

// FetchStudentCourses lists every registration of one student.
func (c *Client) FetchStudentCourses(ctx context.Context, matricNo string) (Result[ttms.SessionCourse], error) {
	params := url.Values{}
	params.Set("no_matrik", matricNo)
	return fetch[ttms.SessionCourse](ctx, c, EntityStudentCourses, c.entityURL(EntityStudentCourses, params))
}

// FetchRooms lists a faculty's rooms. roomFilter is a code prefix, ignored when empty.
func (c *Client) FetchRooms(ctx context.Context, facultyCode, roomFilter string) (Result[ttms.FacultyRoom], error) {
	params := url.Values{}
	params.Set("kod_fakulti", facultyCode)
	if roomFilter != "" {
		params.Set("kod_ruang_like", roomFilter)
	}
	return fetch[ttms.FacultyRoom](ctx, c, EntityRooms, c.entityURL(EntityRooms, params))
}

// FetchStudents returns one page of the student listing.
func (c *Client) FetchStudents(ctx context.Context, sessionID string, q StudentQuery) (Result[ttms.Student], error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultStudentPageSize
	}
	params := semesterParams(q.Session, q.Semester)
	params.Set("session_id", sessionID)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(q.Offset))
	return fetch[ttms.Student](ctx, c, EntityStudents, c.entityURL(EntityStudents, params))
}

// FetchLecturers lists lecturers teaching in a session/semester.
func (c *Client) FetchLecturers(ctx context.Context, sessionID, session string, semester int) (Result[ttms.Lecturer], error) {
	params := semesterParams(session, semester)
	params.Set("session_id", sessionID)
	return fetch[ttms.Lecturer](ctx, c, EntityLecturers, c.entityURL(EntityLecturers, params))
}

// FetchSectionStudents lists the roster of one section, including national IDs.
func (c *Client) FetchSectionStudents(ctx context.Context, sessionID string, q SectionQuery) (Result[ttms.SectionStudent], error) {
	params := semesterParams(q.Session, q.Semester)
	params.Set("session_id", sessionID)
	params.Set("kod_subjek", q.CourseCode)
	params.Set("seksyen", q.Section)
	return fetch[ttms.SectionStudent](ctx, c, EntitySectionRoster, c.entityURL(EntitySectionRoster, params))
}
