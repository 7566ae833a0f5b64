package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/outfit-calendar/internal/domain/dashboard"
	"github.com/yanqian/outfit-calendar/internal/domain/outfit"
	"github.com/yanqian/outfit-calendar/internal/infra/backend"
	"github.com/yanqian/outfit-calendar/internal/infra/config"
	apperrors "github.com/yanqian/outfit-calendar/pkg/errors"
	"github.com/yanqian/outfit-calendar/pkg/util"
)

type calendarBody struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Days   []struct {
		Date  string `json:"date"`
		Items []struct {
			ClothingID int64   `json:"clothingId"`
			Name       *string `json:"name"`
			Favorited  bool    `json:"favorited"`
		} `json:"items"`
	} `json:"days"`
}

func TestRouter_CalendarRefresh(t *testing.T) {
	repo := &stubMonthlyRepo{}
	server := newRouterUnderTest(t, repo, &stubDashboard{}, config.RetryConfig{})

	rec := performRequest(server, http.MethodGet, "/api/v1/calendar?year=2024&month=5&favorites=7", "", "sess-a")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "sess-a", rec.Header().Get(sessionHeader))
	require.Equal(t, "sess-a", repo.lastSession())

	body := decodeCalendar(t, rec.Body.Bytes())
	require.Equal(t, "idle", body.Status)
	require.Len(t, body.Days, 1)
	require.Equal(t, "2024-05-03", body.Days[0].Date)
	require.Equal(t, "Coat", *body.Days[0].Items[0].Name)
	require.True(t, body.Days[0].Items[0].Favorited)
}

func TestRouter_MintsSessionKey(t *testing.T) {
	server := newRouterUnderTest(t, &stubMonthlyRepo{}, &stubDashboard{}, config.RetryConfig{})

	rec := performRequest(server, http.MethodGet, "/api/v1/calendar/state", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	key := rec.Header().Get(sessionHeader)
	require.Len(t, key, 36)

	body := decodeCalendar(t, rec.Body.Bytes())
	require.Equal(t, "idle", body.Status)
	require.NotNil(t, body.Days)
}

func TestRouter_FavoritesAndOverlayKeepSessionState(t *testing.T) {
	repo := &stubMonthlyRepo{}
	server := newRouterUnderTest(t, repo, &stubDashboard{}, config.RetryConfig{})

	rec := performRequest(server, http.MethodGet, "/api/v1/calendar?year=2024&month=5", "", "sess-b")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodPut, "/api/v1/calendar/favorites", `{"ids":[7]}`, "sess-b")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decodeCalendar(t, rec.Body.Bytes()).Days[0].Items[0].Favorited)

	rec = performRequest(server, http.MethodPost, "/api/v1/calendar/overlay",
		`{"date":"2024-05-09T08:00:00Z","items":[{"clothingId":9,"sortOrder":1,"name":"Scarf"}]}`, "sess-b")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeCalendar(t, rec.Body.Bytes())
	require.Len(t, body.Days, 2)
	require.Equal(t, "2024-05-09", body.Days[1].Date)
	require.Equal(t, "Scarf", *body.Days[1].Items[0].Name)
	require.Equal(t, 1, repo.callCount())

	// another session has its own state
	rec = performRequest(server, http.MethodGet, "/api/v1/calendar/state", "", "sess-c")
	require.Empty(t, decodeCalendar(t, rec.Body.Bytes()).Days)
}

func TestRouter_CalendarValidation(t *testing.T) {
	server := newRouterUnderTest(t, &stubMonthlyRepo{}, &stubDashboard{}, config.RetryConfig{})

	cases := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/v1/calendar?month=5", ""},
		{http.MethodGet, "/api/v1/calendar?year=2024&month=13", ""},
		{http.MethodGet, "/api/v1/calendar?year=2024&month=5&favorites=a,b", ""},
		{http.MethodPut, "/api/v1/calendar/favorites", `{}`},
		{http.MethodPost, "/api/v1/calendar/overlay", `{"date":"yesterday"}`},
		{http.MethodPost, "/api/v1/calendar/overlay", `not json`},
	}
	for _, tc := range cases {
		rec := performRequest(server, tc.method, tc.path, tc.body, "sess-v")
		require.Equal(t, http.StatusBadRequest, rec.Code, tc.path)
		errBody := decodeErrorBody(t, rec.Body.Bytes())
		require.Equal(t, "invalid_request", errBody.Error.Code)
	}
}

func TestRouter_CalendarUpstreamError(t *testing.T) {
	repo := &stubMonthlyRepo{err: &backend.ResponseError{Status: 503, Message: "calendar is under maintenance"}}
	server := newRouterUnderTest(t, repo, &stubDashboard{}, config.RetryConfig{})

	rec := performRequest(server, http.MethodGet, "/api/v1/calendar?year=2024&month=5", "", "sess-e")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "upstream_error", errBody.Error.Code)
	require.Equal(t, "calendar is under maintenance", errBody.Error.Message)

	rec = performRequest(server, http.MethodGet, "/api/v1/calendar/state", "", "sess-e")
	body := decodeCalendar(t, rec.Body.Bytes())
	require.Equal(t, "error", body.Status)
	require.Equal(t, "calendar is under maintenance", body.Error)
}

func TestRouter_CalendarErrorCarriesLastGoodDays(t *testing.T) {
	repo := &stubMonthlyRepo{}
	server := newRouterUnderTest(t, repo, &stubDashboard{}, config.RetryConfig{})

	rec := performRequest(server, http.MethodGet, "/api/v1/calendar?year=2024&month=5", "", "sess-g")
	require.Equal(t, http.StatusOK, rec.Code)

	repo.setErr(&backend.ResponseError{Status: 503, Message: "calendar is under maintenance"})
	rec = performRequest(server, http.MethodGet, "/api/v1/calendar?year=2024&month=6", "", "sess-g")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "upstream_error", errBody.Error.Code)
	require.NotNil(t, errBody.State)
	require.Equal(t, "error", errBody.State.Status)
	require.Equal(t, 6, errBody.State.Month)
	require.Len(t, errBody.State.Days, 1)
	require.Equal(t, "2024-05-03", errBody.State.Days[0].Date)
}

func TestRouter_RetriesTransientFailures(t *testing.T) {
	repo := &stubMonthlyRepo{failures: 1}
	retry := config.RetryConfig{Enabled: true, MaxAttempts: 2, BaseBackoff: time.Millisecond}
	server := newRouterUnderTest(t, repo, &stubDashboard{}, retry)

	rec := performRequest(server, http.MethodGet, "/api/v1/calendar?year=2024&month=5", "", "sess-r")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, repo.callCount())
	require.Equal(t, "sess-r", rec.Header().Get(sessionHeader))
}

func TestRouter_RetryKeepsMintedSession(t *testing.T) {
	repo := &stubMonthlyRepo{failures: 1}
	sessions := newTestSessions(repo)
	handler := NewHandler(sessions, &stubDashboard{}, newTestLogger())
	server := NewRouter(testConfig(config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}), handler)

	rec := performRequest(server, http.MethodGet, "/api/v1/calendar?year=2024&month=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, repo.callCount())
	require.Equal(t, 1, sessions.Len())

	key := rec.Header().Get(sessionHeader)
	require.Len(t, key, 36)
	require.Equal(t, key, repo.lastSession())
	calendar, ok := sessions.Lookup(key)
	require.True(t, ok)
	require.Len(t, calendar.Snapshot().Days, 1)
}

func TestRouter_DashboardOverview(t *testing.T) {
	dash := &stubDashboard{ui: dashboard.OverviewUI{Range: dashboard.Range{From: "2024-05-01", To: "2024-05-31"}}}
	server := newRouterUnderTest(t, &stubMonthlyRepo{}, dash, config.RetryConfig{})

	rec := performRequest(server, http.MethodGet, "/api/v1/dashboard/overview?year=2024&month=5&section=funnel", "", "sess-d")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, dashboard.SectionFunnel, dash.last.Section)

	var got dashboard.OverviewUI
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "2024-05-31", got.Range.To)
}

func TestRouter_DashboardErrors(t *testing.T) {
	dash := &stubDashboard{err: apperrors.Wrap("invalid_input", "unknown section", nil)}
	server := newRouterUnderTest(t, &stubMonthlyRepo{}, dash, config.RetryConfig{})

	rec := performRequest(server, http.MethodGet, "/api/v1/dashboard/overview?year=2024&month=5&section=x", "", "sess-d")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	dash.err = apperrors.Wrap("upstream_error", "fetch dashboard overview failed", &backend.ResponseError{Status: 500})
	rec = performRequest(server, http.MethodGet, "/api/v1/dashboard/overview?year=2024&month=5", "", "sess-d")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "fetch dashboard overview failed: backend responded 500", errBody.Error.Message)
}

func TestRouter_HealthAndCORS(t *testing.T) {
	server := newRouterUnderTest(t, &stubMonthlyRepo{}, &stubDashboard{}, config.RetryConfig{})

	rec := performRequest(server, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, rec.Header().Get(sessionHeader))

	rec = performRequest(server, http.MethodOptions, "/api/v1/calendar/favorites", "", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), sessionHeader)
	require.Equal(t, sessionHeader, rec.Header().Get("Access-Control-Expose-Headers"))
}

func TestRouter_RateLimit(t *testing.T) {
	sessions := newTestSessions(&stubMonthlyRepo{})
	handler := NewHandler(sessions, &stubDashboard{}, newTestLogger())
	cfg := testConfig(config.RetryConfig{})
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	server := NewRouter(cfg, handler)

	require.Equal(t, http.StatusOK, performRequest(server, http.MethodGet, "/api/v1/calendar/state", "", "x").Code)
	rec := performRequest(server, http.MethodGet, "/api/v1/calendar/state", "", "x")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, rec.Body.Bytes()).Error.Code)
}

func performRequest(server *http.Server, method, path, body, session string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, repo *stubMonthlyRepo, dash dashboard.Service, retry config.RetryConfig) *http.Server {
	t.Helper()
	handler := NewHandler(newTestSessions(repo), dash, newTestLogger())
	return NewRouter(testConfig(retry), handler)
}

func testConfig(retry config.RetryConfig) *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			Retry:          retry,
			AllowedOrigins: []string{"*"},
		},
	}
}

func newTestSessions(repo *stubMonthlyRepo) *outfit.Sessions {
	resolver := outfit.NewSummaryResolver(outfit.Config{}, stubSummaries{}, nil, newTestLogger())
	return outfit.NewSessions(outfit.Config{SessionIdleTTL: time.Hour}, repo, resolver, newTestLogger())
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubMonthlyRepo struct {
	mu       sync.Mutex
	calls    int
	failures int
	err      error
	session  string
}

func (s *stubMonthlyRepo) MonthlyOutfits(ctx context.Context, year, month int) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.session, _ = util.SessionKey(ctx)
	if s.err != nil {
		return nil, s.err
	}
	if s.failures > 0 {
		s.failures--
		return nil, &backend.ResponseError{Status: http.StatusServiceUnavailable}
	}
	return map[string]any{
		"success": true,
		"data": map[string]any{
			"year":  float64(year),
			"month": float64(month),
			"days": []any{
				map[string]any{
					"date":  "2024-05-03",
					"items": []any{map[string]any{"clothingId": 7.0, "sortOrder": 1.0}},
				},
			},
		},
	}, nil
}

func (s *stubMonthlyRepo) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *stubMonthlyRepo) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubMonthlyRepo) lastSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

type stubSummaries struct{}

func (stubSummaries) ClothingSummaries(_ context.Context, ids []int64) (any, error) {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		if id == 7 {
			out = append(out, map[string]any{"clothingId": 7.0, "name": "Coat", "category": "OUTER"})
		}
	}
	return out, nil
}

type stubDashboard struct {
	ui   dashboard.OverviewUI
	err  error
	last dashboard.Query
}

func (s *stubDashboard) Overview(_ context.Context, q dashboard.Query) (dashboard.OverviewUI, error) {
	s.last = q
	return s.ui, s.err
}

func decodeCalendar(t *testing.T, raw []byte) calendarBody {
	t.Helper()
	var body calendarBody
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	State *calendarBody `json:"state"`
}

func decodeErrorBody(t *testing.T, raw []byte) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
