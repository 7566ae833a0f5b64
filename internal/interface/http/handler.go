package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/outfit-calendar/internal/domain/dashboard"
	"github.com/yanqian/outfit-calendar/internal/domain/outfit"
	"github.com/yanqian/outfit-calendar/pkg/normalize"
	"github.com/yanqian/outfit-calendar/pkg/payload"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	sessions     *outfit.Sessions
	dashboardSvc dashboard.Service
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(sessions *outfit.Sessions, dashboardSvc dashboard.Service, logger *slog.Logger) *Handler {
	return &Handler{
		sessions:     sessions,
		dashboardSvc: dashboardSvc,
		logger:       logger.With("component", "http.handler"),
	}
}

type calendarQuery struct {
	Year  int `form:"year" binding:"required"`
	Month int `form:"month" binding:"required"`
}

type favoritesRequest struct {
	IDs []int64 `json:"ids" binding:"required"`
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.sessions.Len()})
}

// Calendar refreshes the session's month and returns the resulting state.
// The favorites parameter replaces the favorite set when present; an empty
// value clears it. A failed refresh still carries the last good state.
func (h *Handler) Calendar(c *gin.Context) {
	var q calendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	query := outfit.Query{Year: q.Year, Month: q.Month}
	if raw, ok := c.GetQuery("favorites"); ok {
		ids, err := parseIDList(raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "favorites must be a comma separated list of ids", err))
			return
		}
		query.Favorites = ids
	}

	state, err := h.sessions.Get(getSessionKey(c)).Refresh(c.Request.Context(), query)
	if err != nil {
		abortWithError(c, domainError(err, "calendar_failed").WithDetail("state", state))
		return
	}
	c.JSON(http.StatusOK, state)
}

// CalendarState returns the current snapshot without contacting the backend.
func (h *Handler) CalendarState(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Get(getSessionKey(c)).Snapshot())
}

// SetFavorites recomputes the favorited flags from the cached month.
func (h *Handler) SetFavorites(c *gin.Context) {
	var req favoritesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, h.sessions.Get(getSessionKey(c)).SetFavorites(req.IDs))
}

// Overlay applies a just-saved day on top of the calendar.
func (h *Handler) Overlay(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read body", err))
		return
	}
	decoded, err := payload.Decode(body)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	day := outfit.DecodeDay(decoded)
	if normalize.ISODate(day.Date) == normalize.EpochDate {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "date must be formatted as YYYY-MM-DD", nil))
		return
	}
	c.JSON(http.StatusOK, h.sessions.Get(getSessionKey(c)).Overlay(day))
}

// DashboardOverview returns the normalized monthly dashboard.
func (h *Handler) DashboardOverview(c *gin.Context) {
	var q dashboard.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	q.Section = dashboard.Section(strings.ToUpper(strings.TrimSpace(string(q.Section))))

	ui, err := h.dashboardSvc.Overview(c.Request.Context(), q)
	if err != nil {
		abortWithError(c, domainError(err, "dashboard_failed"))
		return
	}
	c.JSON(http.StatusOK, ui)
}

func parseIDList(raw string) ([]int64, error) {
	ids := []int64{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
