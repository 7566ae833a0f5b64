package outfit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustDecode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

type remoteError struct {
	message string
}

func (e *remoteError) Error() string         { return "HTTP 503 (UNAVAILABLE)" }
func (e *remoteError) RemoteMessage() string { return e.message }

// stubRepo serves monthly payloads per month. A month can be held until the
// test releases it, which lets tests control completion order.
type stubRepo struct {
	mu       sync.Mutex
	payloads map[int]any
	errs     map[int]error
	gates    map[int]chan struct{}
	calls    int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		payloads: make(map[int]any),
		errs:     make(map[int]error),
		gates:    make(map[int]chan struct{}),
	}
}

func (r *stubRepo) hold(month int) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	gate := make(chan struct{})
	r.gates[month] = gate
	return gate
}

func (r *stubRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *stubRepo) MonthlyOutfits(ctx context.Context, year, month int) (any, error) {
	r.mu.Lock()
	r.calls++
	gate := r.gates[month]
	payload, err := r.payloads[month], r.errs[month]
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return payload, err
}

type stubSummaryClient struct {
	mu        sync.Mutex
	summaries map[int64]ClothingSummary
	err       error
	calls     int
	lastIDs   []int64
}

func (c *stubSummaryClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *stubSummaryClient) ClothingSummaries(ctx context.Context, ids []int64) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.lastIDs = append([]int64(nil), ids...)
	if c.err != nil {
		return nil, c.err
	}
	rows := make([]any, 0, len(ids))
	for _, id := range ids {
		summary, ok := c.summaries[id]
		if !ok {
			continue
		}
		row := map[string]any{"clothingId": float64(id)}
		if summary.Name != nil {
			row["name"] = *summary.Name
		}
		if summary.ImageURL != nil {
			row["imageUrl"] = *summary.ImageURL
		}
		if summary.Category != nil {
			row["category"] = *summary.Category
		}
		rows = append(rows, row)
	}
	return map[string]any{"success": true, "data": rows}, nil
}

type stubCache struct {
	entries map[string]map[int64]ClothingSummary
	getErr  error
	saved   []ClothingSummary
	scopes  []string
	ttl     time.Duration
}

func (c *stubCache) put(scope string, summary ClothingSummary) {
	if c.entries == nil {
		c.entries = make(map[string]map[int64]ClothingSummary)
	}
	if c.entries[scope] == nil {
		c.entries[scope] = make(map[int64]ClothingSummary)
	}
	c.entries[scope][summary.ClothingID] = summary
}

func (c *stubCache) GetSummaries(ctx context.Context, scope string, ids []int64) (map[int64]ClothingSummary, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	out := make(map[int64]ClothingSummary)
	for _, id := range ids {
		if s, ok := c.entries[scope][id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (c *stubCache) SaveSummaries(ctx context.Context, scope string, summaries []ClothingSummary, ttl time.Duration) error {
	c.saved = append(c.saved, summaries...)
	c.scopes = append(c.scopes, scope)
	c.ttl = ttl
	for _, summary := range summaries {
		c.put(scope, summary)
	}
	return nil
}

func wardrobe() map[int64]ClothingSummary {
	return map[int64]ClothingSummary{
		3: {ClothingID: 3, Name: strPtr("Shirt"), ImageURL: strPtr("https://img/3.png"), Category: strPtr("TOP")},
		7: {ClothingID: 7, Name: strPtr("Coat"), Category: strPtr("OUTER")},
	}
}
