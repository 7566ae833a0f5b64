package outfit

import (
	"context"
	"log/slog"
	"sync"

	apperrors "github.com/yanqian/outfit-calendar/pkg/errors"
)

// MonthlySync owns the calendar view model of one UI session. Refreshes may
// overlap; only the most recently issued one is allowed to change state.
type MonthlySync struct {
	repo     MonthlyRepository
	resolver *SummaryResolver
	logger   *slog.Logger
	seq      Sequencer

	mu          sync.Mutex
	closed      bool
	status      Status
	errMsg      string
	year        int
	month       int
	loadedYear  int
	loadedMonth int
	raw         *MonthlyRecord
	summaries   map[int64]ClothingSummary
	favorites   FavoriteSet
	favoriteGen uint64
	recent      *DayRecord
	days        MonthlyView
}

// NewMonthlySync builds an idle sync with an empty view.
func NewMonthlySync(repo MonthlyRepository, resolver *SummaryResolver, logger *slog.Logger) *MonthlySync {
	return &MonthlySync{
		repo:     repo,
		resolver: resolver,
		logger:   logger.With("component", "outfit.sync"),
		status:   StatusIdle,
		days:     MonthlyView{},
	}
}

// Refresh loads the month in q and rebuilds the view. When a newer Refresh
// has been issued meanwhile, the result (or error) of this one is dropped and
// the current snapshot is returned with a nil error.
func (s *MonthlySync) Refresh(ctx context.Context, q Query) (State, error) {
	s.mu.Lock()
	tok := s.seq.Next()
	s.status = StatusLoading
	s.errMsg = ""
	s.year, s.month = q.Year, q.Month
	if q.Favorites != nil {
		s.favorites = NewFavoriteSet(q.Favorites...)
		s.favoriteGen++
	}
	if q.RecentlySaved != nil {
		saved := *q.RecentlySaved
		s.recent = &saved
	}
	favorites, recent, gen := s.favorites, s.recent, s.favoriteGen
	s.mu.Unlock()

	if err := validateMonth(q.Year, q.Month); err != nil {
		return s.fail(tok, err)
	}

	raw, err := s.repo.MonthlyOutfits(ctx, q.Year, q.Month)
	if err != nil {
		return s.fail(tok, apperrors.Wrap("upstream_error", "fetch monthly outfits failed", err))
	}
	if !s.seq.Current(tok) {
		return s.discard(tok, "monthly fetched")
	}

	monthly := DecodeMonthly(raw)
	summaries, err := s.resolver.Resolve(ctx, CollectClothingIDs(monthly.Days))
	if err != nil {
		return s.fail(tok, err)
	}
	days := compose(monthly.Days, summaries, favorites, recent, q.Year, q.Month)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.seq.Current(tok) {
		s.logger.Debug("stale monthly refresh dropped", "token", tok, "stage", "built")
		return s.snapshotLocked(), nil
	}
	if s.favoriteGen != gen || s.recent != recent {
		// favorites or an overlay changed while this refresh was in flight
		days = compose(monthly.Days, summaries, s.favorites, s.recent, q.Year, q.Month)
	}
	s.raw = &monthly
	s.loadedYear, s.loadedMonth = q.Year, q.Month
	s.summaries = summaries
	s.days = days
	s.status = StatusIdle
	s.logger.Info("monthly view refreshed", "year", q.Year, "month", q.Month, "days", len(days))
	return s.snapshotLocked(), nil
}

// SetFavorites replaces the favorites set and rebuilds the current view from
// the cached month without any network call.
func (s *MonthlySync) SetFavorites(ids []int64) State {
	s.mu.Lock()
	s.favorites = NewFavoriteSet(ids...)
	s.favoriteGen++
	gen := s.favoriteGen
	raw, summaries, favorites, recent := s.raw, s.summaries, s.favorites, s.recent
	year, month := s.loadedYear, s.loadedMonth
	if raw == nil {
		defer s.mu.Unlock()
		return s.snapshotLocked()
	}
	s.mu.Unlock()

	days := compose(raw.Days, summaries, favorites, recent, year, month)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.raw != raw || s.favoriteGen != gen {
		s.logger.Debug("favorites recompute dropped", "generation", gen)
		return s.snapshotLocked()
	}
	s.days = days
	return s.snapshotLocked()
}

// Overlay records saved as the latest local write and patches it into the
// current view when it belongs to the month the view was built from, which
// may differ from the requested month while a refresh is loading or after
// it failed.
func (s *MonthlySync) Overlay(saved DayRecord) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = &saved
	if s.closed || s.raw == nil || !overlayMonth(saved, s.loadedYear, s.loadedMonth) {
		return s.snapshotLocked()
	}
	s.days = ApplyOverlay(s.days, saved, s.summaries, s.favorites)
	return s.snapshotLocked()
}

// Snapshot returns the current state.
func (s *MonthlySync) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close stops the sync from accepting further results.
func (s *MonthlySync) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *MonthlySync) fail(tok Token, err error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.seq.Current(tok) {
		s.logger.Debug("stale monthly refresh error dropped", "token", tok, "error", err)
		return s.snapshotLocked(), nil
	}
	s.status = StatusError
	s.errMsg = apperrors.Message(err)
	s.logger.Warn("monthly refresh failed", "year", s.year, "month", s.month, "error", err)
	return s.snapshotLocked(), err
}

func (s *MonthlySync) discard(tok Token, stage string) (State, error) {
	s.logger.Debug("stale monthly refresh dropped", "token", tok, "stage", stage)
	return s.Snapshot(), nil
}

func (s *MonthlySync) snapshotLocked() State {
	return State{
		Status:    s.status,
		Error:     s.errMsg,
		IsLoading: s.status == StatusLoading,
		Year:      s.year,
		Month:     s.month,
		Days:      s.days,
		Raw:       s.raw,
	}
}

func compose(days []DayRecord, summaries map[int64]ClothingSummary, favorites FavoriteSet, recent *DayRecord, year, month int) MonthlyView {
	view := BuildMonth(days, summaries, favorites)
	if recent != nil && overlayMonth(*recent, year, month) {
		view = ApplyOverlay(view, *recent, summaries, favorites)
	}
	return view
}

func validateMonth(year, month int) error {
	if year < 2000 {
		return apperrors.Wrap("invalid_input", "year must be 2000 or later", nil)
	}
	if month < 1 || month > 12 {
		return apperrors.Wrap("invalid_input", "month must be between 1 and 12", nil)
	}
	return nil
}
