package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/yanqian/outfit-calendar/pkg/errors"
	"github.com/yanqian/outfit-calendar/pkg/payload"
	"github.com/yanqian/outfit-calendar/pkg/util"
)

const (
	defaultBaseURL = "http://localhost:8080"

	// SessionHeader carries the UI session key to the backend.
	SessionHeader = "X-Session-Key"

	maxErrorBody = 4 << 10
)

// Config controls the upstream backend connection.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	Burst             int
}

// ResponseError is returned for non-2xx responses and for bodies explicitly
// marked {"success": false}.
type ResponseError struct {
	Status  int
	Code    string
	Message string
}

func (e *ResponseError) Error() string {
	var b strings.Builder
	b.WriteString("backend responded ")
	b.WriteString(strconv.Itoa(e.Status))
	if e.Code != "" {
		b.WriteString(" (" + e.Code + ")")
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	return b.String()
}

// RemoteMessage exposes the message reported in the response body.
func (e *ResponseError) RemoteMessage() string {
	return e.Message
}

// Client talks to the outfit backend. It implements the outfit repository,
// the clothing summary client and the dashboard overview client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient builds a backend client. A non-positive RequestsPerMinute
// disables outbound throttling.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerMinute > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
		logger:  logger.With("component", "backend.client"),
	}
}

// MonthlyOutfits fetches the saved outfits of one month.
func (c *Client) MonthlyOutfits(ctx context.Context, year, month int) (any, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	query.Set("month", strconv.Itoa(month))
	return c.do(ctx, http.MethodGet, "/api/outfits/monthly", query, nil)
}

// ClothingSummaries resolves many clothing IDs in one request.
func (c *Client) ClothingSummaries(ctx context.Context, ids []int64) (any, error) {
	if ids == nil {
		ids = []int64{}
	}
	return c.do(ctx, http.MethodPost, "/api/clothes/summary", nil, map[string]any{"ids": ids})
}

// DashboardOverview fetches the monthly dashboard overview. An empty section
// requests every section.
func (c *Client) DashboardOverview(ctx context.Context, year, month int, section string) (any, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	query.Set("month", strconv.Itoa(month))
	if section = strings.TrimSpace(section); section != "" {
		query.Set("section", section)
	}
	return c.do(ctx, http.MethodGet, "/api/user/dashboard/overview", query, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("backend rate limit wait: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode backend request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build backend request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key, ok := util.SessionKey(ctx); ok {
		req.Header.Set(SessionHeader, key)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"latency", time.Since(start),
	)

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, responseError(resp.StatusCode, raw)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w", err)
	}
	decoded, err := payload.Decode(raw)
	if err != nil {
		return nil, err
	}
	if code, message, failed := payload.Failure(decoded); failed {
		return nil, &ResponseError{Status: resp.StatusCode, Code: code, Message: message}
	}
	return decoded, nil
}

// responseError extracts code and message from an error body when it is JSON.
func responseError(status int, raw []byte) *ResponseError {
	out := &ResponseError{Status: status}
	decoded, err := payload.Decode(raw)
	if err != nil {
		return out
	}
	obj := payload.Object(decoded)
	if code, ok := obj["code"].(string); ok {
		out.Code = strings.TrimSpace(code)
	}
	if message, ok := obj["message"].(string); ok {
		out.Message = strings.TrimSpace(message)
	}
	return out
}

func validateMonth(year, month int) error {
	if year < 2000 {
		return apperrors.Wrap("invalid_input", fmt.Sprintf("invalid year %d", year), nil)
	}
	if month < 1 || month > 12 {
		return apperrors.Wrap("invalid_input", fmt.Sprintf("invalid month %d", month), nil)
	}
	return nil
}
