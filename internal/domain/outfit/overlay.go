package outfit

import (
	"fmt"

	"github.com/yanqian/outfit-calendar/pkg/normalize"
)

// ApplyOverlay splices a just-saved day into view using the already resolved
// summaries. An existing record for the same date is replaced as a whole,
// otherwise the record is appended. view is left untouched.
func ApplyOverlay(view MonthlyView, saved DayRecord, summaries map[int64]ClothingSummary, favorites FavoriteSet) MonthlyView {
	patched := buildDay(saved, summaries, favorites)

	out := make(MonthlyView, 0, len(view)+1)
	replaced := false
	for _, day := range view {
		if day.Date == patched.Date {
			if !replaced {
				out = append(out, patched)
				replaced = true
			}
			continue
		}
		out = append(out, day)
	}
	if !replaced {
		out = append(out, patched)
	}
	sortDays(out)
	return out
}

// overlayMonth reports whether saved belongs to the given calendar month.
func overlayMonth(saved DayRecord, year, month int) bool {
	date := normalize.ISODate(saved.Date)
	if date == normalize.EpochDate {
		return false
	}
	return date[:7] == fmt.Sprintf("%04d-%02d", year, month)
}
