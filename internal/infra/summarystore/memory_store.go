package summarystore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/outfit-calendar/internal/domain/outfit"
)

const (
	defaultMaxEntries = 50000
	sweepInterval     = time.Minute
)

type entryKey struct {
	scope string
	id    int64
}

type summaryRecord struct {
	payload   outfit.ClothingSummary
	expiresAt time.Time
}

// MemoryStore keeps clothing summaries in process memory. Expired entries are
// swept on write and the store never holds more than maxEntries summaries.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[entryKey]summaryRecord
	maxEntries int
	lastSweep  time.Time
	now        func() time.Time
}

// NewMemoryStore constructs a store backed by process memory. A non-positive
// maxEntries selects the default cap.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &MemoryStore{
		entries:    make(map[entryKey]summaryRecord),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// GetSummaries returns the summaries cached for scope among ids. Expired
// entries are dropped on read.
func (s *MemoryStore) GetSummaries(_ context.Context, scope string, ids []int64) (map[int64]outfit.ClothingSummary, error) {
	out := make(map[int64]outfit.ClothingSummary, len(ids))
	var expired []entryKey

	s.mu.RLock()
	now := s.now()
	for _, id := range ids {
		key := entryKey{scope: scope, id: id}
		record, ok := s.entries[key]
		if !ok {
			continue
		}
		if hasExpired(record.expiresAt, now) {
			expired = append(expired, key)
			continue
		}
		out[id] = record.payload
	}
	s.mu.RUnlock()

	if len(expired) > 0 {
		s.mu.Lock()
		for _, key := range expired {
			if record, ok := s.entries[key]; ok && hasExpired(record.expiresAt, s.now()) {
				delete(s.entries, key)
			}
		}
		s.mu.Unlock()
	}
	return out, nil
}

// SaveSummaries caches summaries for scope with an optional TTL.
func (s *MemoryStore) SaveSummaries(_ context.Context, scope string, summaries []outfit.ClothingSummary, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweepLocked(now)
	}

	exp := time.Time{}
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	for _, summary := range summaries {
		if summary.ClothingID <= 0 {
			continue
		}
		key := entryKey{scope: scope, id: summary.ClothingID}
		if _, ok := s.entries[key]; !ok && len(s.entries) >= s.maxEntries {
			s.sweepLocked(now)
			if len(s.entries) >= s.maxEntries {
				s.evictOneLocked()
			}
		}
		s.entries[key] = summaryRecord{
			payload:   summary,
			expiresAt: exp,
		}
	}
	return nil
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	s.lastSweep = now
	for key, record := range s.entries {
		if hasExpired(record.expiresAt, now) {
			delete(s.entries, key)
		}
	}
}

// evictOneLocked drops the entry closest to expiry. Entries without a TTL go
// last.
func (s *MemoryStore) evictOneLocked() {
	var (
		victim entryKey
		soon   time.Time
		found  bool
	)
	for key, record := range s.entries {
		if !found || earlier(record.expiresAt, soon) {
			victim, soon, found = key, record.expiresAt, true
		}
	}
	if found {
		delete(s.entries, victim)
	}
}

func earlier(a, b time.Time) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	default:
		return a.Before(b)
	}
}

func hasExpired(ts, now time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(now)
}

var _ outfit.SummaryCache = (*MemoryStore)(nil)
