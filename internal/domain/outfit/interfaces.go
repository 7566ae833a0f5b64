package outfit

import (
	"context"
	"time"
)

// MonthlyRepository loads the raw monthly outfit payload. The result may or
// may not be wrapped in a {success, data} envelope.
type MonthlyRepository interface {
	MonthlyOutfits(ctx context.Context, year, month int) (any, error)
}

// SummaryClient resolves clothing summaries for many IDs in one call.
type SummaryClient interface {
	ClothingSummaries(ctx context.Context, ids []int64) (any, error)
}

// SummaryCache keeps clothing summaries between refreshes. Entries are
// partitioned by scope, the session key the backend authorized them for.
type SummaryCache interface {
	GetSummaries(ctx context.Context, scope string, ids []int64) (map[int64]ClothingSummary, error)
	SaveSummaries(ctx context.Context, scope string, summaries []ClothingSummary, ttl time.Duration) error
}
