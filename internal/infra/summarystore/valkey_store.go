package summarystore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/outfit-calendar/internal/domain/outfit"
)

// ValkeyStore caches clothing summaries in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "outfit-calendar"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// GetSummaries reads all ids of scope with a single MGET. Missing keys are
// skipped.
func (s *ValkeyStore) GetSummaries(ctx context.Context, scope string, ids []int64) (map[int64]outfit.ClothingSummary, error) {
	out := make(map[int64]outfit.ClothingSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.summaryKey(scope, id)
	}

	arr, err := s.client.Do(ctx, s.client.B().Mget().Key(keys...).Build()).ToArray()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return out, nil
		}
		return nil, err
	}
	for i, msg := range arr {
		if i >= len(ids) {
			break
		}
		payload, err := msg.ToString()
		if err != nil {
			if valkey.IsValkeyNil(err) {
				continue
			}
			return nil, err
		}
		var summary outfit.ClothingSummary
		if err := json.Unmarshal([]byte(payload), &summary); err != nil {
			// a corrupt entry is treated as a miss and rewritten on the next fetch
			continue
		}
		out[ids[i]] = summary
	}
	return out, nil
}

// SaveSummaries writes every summary in one pipeline.
func (s *ValkeyStore) SaveSummaries(ctx context.Context, scope string, summaries []outfit.ClothingSummary, ttl time.Duration) error {
	cmds := make(valkey.Commands, 0, len(summaries))
	for _, summary := range summaries {
		if summary.ClothingID <= 0 {
			continue
		}
		payload, err := json.Marshal(summary)
		if err != nil {
			return err
		}
		cmds = append(cmds, s.setCommand(s.summaryKey(scope, summary.ClothingID), string(payload), ttl))
	}
	if len(cmds) == 0 {
		return nil
	}
	for _, result := range s.client.DoMulti(ctx, cmds...) {
		if err := result.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ValkeyStore) setCommand(key, value string, ttl time.Duration) valkey.Completed {
	builder := s.client.B().Set().Key(key).Value(value)
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		return builder.Ex(ttl).Build()
	}
	return builder.Build()
}

// summaryKey places the id last so a scope containing ':' cannot collide.
func (s *ValkeyStore) summaryKey(scope string, id int64) string {
	return fmt.Sprintf("%s:clothing:%s:%d", s.prefix, scope, id)
}

var _ outfit.SummaryCache = (*ValkeyStore)(nil)
