package backend

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/outfit-calendar/pkg/errors"
	"github.com/yanqian/outfit-calendar/pkg/util"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMonthlyOutfitsForwardsQueryAndSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/outfits/monthly", r.URL.Path)
		require.Equal(t, "2024", r.URL.Query().Get("year"))
		require.Equal(t, "5", r.URL.Query().Get("month"))
		require.Equal(t, "sess-1", r.Header.Get(SessionHeader))
		_, _ = w.Write([]byte(`{"success":true,"data":{"year":2024,"month":5,"days":[]}}`))
	})

	ctx := util.WithSessionKey(context.Background(), "sess-1")
	raw, err := client.MonthlyOutfits(ctx, 2024, 5)
	require.NoError(t, err)
	obj, ok := raw.(map[string]any)
	require.True(t, ok)
	require.Equal(t, true, obj["success"])
}

func TestMonthlyOutfitsValidatesBeforeRequest(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.MonthlyOutfits(context.Background(), 1999, 5)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
	_, err = client.MonthlyOutfits(context.Background(), 2024, 0)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
	require.False(t, called)
}

func TestClothingSummariesPostsIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/clothes/summary", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Empty(t, r.Header.Get(SessionHeader))

		var body struct {
			IDs []int64 `json:"ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, []int64{3, 7}, body.IDs)
		_, _ = w.Write([]byte(`[{"clothingId":3,"name":"Shirt"}]`))
	})

	raw, err := client.ClothingSummaries(context.Background(), []int64{3, 7})
	require.NoError(t, err)
	require.Len(t, raw, 1)
}

func TestDashboardOverviewSection(t *testing.T) {
	var sections []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/user/dashboard/overview", r.URL.Path)
		sections = append(sections, r.URL.Query().Get("section"))
		_, has := r.URL.Query()["section"]
		if !has {
			sections[len(sections)-1] = "<none>"
		}
		_, _ = w.Write([]byte(`{"range":{}}`))
	})

	_, err := client.DashboardOverview(context.Background(), 2024, 5, "FUNNEL")
	require.NoError(t, err)
	_, err = client.DashboardOverview(context.Background(), 2024, 5, "")
	require.NoError(t, err)
	require.Equal(t, []string{"FUNNEL", "<none>"}, sections)
}

func TestErrorStatusCarriesBodyMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"code":"MAINTENANCE","message":"calendar is under maintenance"}`))
	})

	_, err := client.MonthlyOutfits(context.Background(), 2024, 5)
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	require.Equal(t, http.StatusServiceUnavailable, respErr.Status)
	require.Equal(t, "MAINTENANCE", respErr.Code)
	require.Equal(t, "calendar is under maintenance", apperrors.Message(err))
}

func TestErrorStatusWithoutJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := client.MonthlyOutfits(context.Background(), 2024, 5)
	require.Error(t, err)
	require.Equal(t, "backend responded 502", apperrors.Message(err))
}

func TestFailedEnvelopeIsAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"code":"NOT_FOUND","message":"no such user"}`))
	})

	_, err := client.DashboardOverview(context.Background(), 2024, 5, "")
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	require.Equal(t, http.StatusOK, respErr.Status)
	require.Equal(t, "NOT_FOUND", respErr.Code)
	require.Equal(t, "no such user", respErr.RemoteMessage())
}

func TestMalformedBodyFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	_, err := client.MonthlyOutfits(context.Background(), 2024, 5)
	require.ErrorContains(t, err, "decode payload")
}
