package outfit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yanqian/outfit-calendar/pkg/util"
)

const defaultSessionIdleTTL = 30 * time.Minute

type sessionEntry struct {
	sync     *MonthlySync
	lastSeen time.Time
}

// Sessions keeps one MonthlySync per UI session and evicts idle ones.
type Sessions struct {
	repo     MonthlyRepository
	resolver *SummaryResolver
	logger   *slog.Logger
	idleTTL  time.Duration
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

// NewSessions wires the session registry.
func NewSessions(cfg Config, repo MonthlyRepository, resolver *SummaryResolver, logger *slog.Logger) *Sessions {
	ttl := cfg.SessionIdleTTL
	if ttl <= 0 {
		ttl = defaultSessionIdleTTL
	}
	return &Sessions{
		repo:     repo,
		resolver: resolver,
		logger:   logger,
		idleTTL:  ttl,
		now:      util.NowUTC,
		entries:  make(map[string]*sessionEntry),
	}
}

// Get returns the sync for key, creating it on first use.
func (s *Sessions) Get(key string) *MonthlySync {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		entry = &sessionEntry{sync: NewMonthlySync(s.repo, s.resolver, s.logger.With("session", key))}
		s.entries[key] = entry
	}
	entry.lastSeen = s.now()
	return entry.sync
}

// Lookup returns the sync for key without creating one.
func (s *Sessions) Lookup(key string) (*MonthlySync, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	entry.lastSeen = s.now()
	return entry.sync, true
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep closes and forgets sessions idle for longer than the TTL.
func (s *Sessions) Sweep() int {
	cutoff := s.now().Add(-s.idleTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for key, entry := range s.entries {
		if entry.lastSeen.Before(cutoff) {
			entry.sync.Close()
			delete(s.entries, key)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Info("idle calendar sessions evicted", "count", evicted, "remaining", len(s.entries))
	}
	return evicted
}

// RunJanitor sweeps periodically until ctx is done.
func (s *Sessions) RunJanitor(ctx context.Context) {
	interval := s.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
