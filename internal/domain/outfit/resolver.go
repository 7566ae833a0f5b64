package outfit

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/yanqian/outfit-calendar/pkg/errors"
	"github.com/yanqian/outfit-calendar/pkg/util"
)

// SummaryResolver batches clothing summary lookups into a single upstream
// call, consulting an optional cache first.
type SummaryResolver struct {
	client SummaryClient
	cache  SummaryCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewSummaryResolver wires the resolver. cache may be nil.
func NewSummaryResolver(cfg Config, client SummaryClient, cache SummaryCache, logger *slog.Logger) *SummaryResolver {
	return &SummaryResolver{
		client: client,
		cache:  cache,
		ttl:    cfg.SummaryCacheTTL,
		logger: logger.With("component", "outfit.resolver"),
	}
}

// Resolve maps the given IDs to their summaries. IDs the backend does not
// know are simply absent from the result. The cache is only consulted for
// requests carrying a session key, and only within that session.
func (r *SummaryResolver) Resolve(ctx context.Context, ids []int64) (map[int64]ClothingSummary, error) {
	ids = distinctPositive(ids)
	resolved := make(map[int64]ClothingSummary, len(ids))
	if len(ids) == 0 {
		return resolved, nil
	}

	scope, scoped := util.SessionKey(ctx)
	useCache := r.cache != nil && scoped

	missing := ids
	if useCache {
		cached, err := r.cache.GetSummaries(ctx, scope, ids)
		if err != nil {
			r.logger.Warn("summary cache read failed", "ids", len(ids), "error", err)
		}
		missing = make([]int64, 0, len(ids))
		for _, id := range ids {
			if summary, ok := cached[id]; ok {
				resolved[id] = summary
				continue
			}
			missing = append(missing, id)
		}
		if len(missing) == 0 {
			r.logger.Debug("clothing summaries served from cache", "ids", len(ids))
			return resolved, nil
		}
	}

	raw, err := r.client.ClothingSummaries(ctx, missing)
	if err != nil {
		return nil, apperrors.Wrap("upstream_error", "fetch clothing summaries failed", err)
	}
	fetched := DecodeSummaries(raw)
	for _, summary := range fetched {
		resolved[summary.ClothingID] = summary
	}
	r.logger.Debug("clothing summaries fetched", "requested", len(missing), "returned", len(fetched))

	if useCache && len(fetched) > 0 {
		if err := r.cache.SaveSummaries(ctx, scope, fetched, r.ttl); err != nil {
			r.logger.Warn("summary cache write failed", "count", len(fetched), "error", err)
		}
	}
	return resolved, nil
}

func distinctPositive(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
