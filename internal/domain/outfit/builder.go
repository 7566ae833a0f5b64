package outfit

import (
	"sort"

	"github.com/yanqian/outfit-calendar/pkg/normalize"
)

// FavoriteSet answers favorite membership for clothing IDs.
type FavoriteSet map[int64]struct{}

// NewFavoriteSet builds a set from ids.
func NewFavoriteSet(ids ...int64) FavoriteSet {
	set := make(FavoriteSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether id is a favorite. A nil set has no favorites.
func (f FavoriteSet) Has(id int64) bool {
	_, ok := f[id]
	return ok
}

// CollectClothingIDs returns the distinct positive clothing IDs referenced by
// days, in first-seen order.
func CollectClothingIDs(days []DayRecord) []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for _, day := range days {
		for _, item := range day.Items {
			if item.ClothingID <= 0 {
				continue
			}
			if _, ok := seen[item.ClothingID]; ok {
				continue
			}
			seen[item.ClothingID] = struct{}{}
			ids = append(ids, item.ClothingID)
		}
	}
	return ids
}

// BuildMonth merges days with resolved summaries and favorites. It returns one
// DayView per input day, ordered by date.
func BuildMonth(days []DayRecord, summaries map[int64]ClothingSummary, favorites FavoriteSet) MonthlyView {
	view := make(MonthlyView, 0, len(days))
	for _, day := range days {
		view = append(view, buildDay(day, summaries, favorites))
	}
	sortDays(view)
	return view
}

func buildDay(day DayRecord, summaries map[int64]ClothingSummary, favorites FavoriteSet) DayView {
	items := make([]ItemView, 0, len(day.Items))
	for _, ref := range day.Items {
		items = append(items, buildItem(ref, summaries, favorites))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SortOrder < items[j].SortOrder
	})

	return DayView{
		Date:               normalize.ISODate(day.Date),
		Items:              items,
		FeedbackScore:      day.FeedbackScore,
		WeatherTemp:        day.WeatherTemp,
		Condition:          day.Condition,
		WeatherFeelsLike:   day.WeatherFeelsLike,
		WeatherCloudAmount: day.WeatherCloudAmount,
		RecoStrategy:       day.RecoStrategy,
	}
}

// buildItem prefers metadata carried by the reference itself, then the
// summary lookup. Unresolved fields stay nil.
func buildItem(ref ItemRef, summaries map[int64]ClothingSummary, favorites FavoriteSet) ItemView {
	item := ItemView{
		ClothingID: ref.ClothingID,
		SortOrder:  ref.SortOrder,
		Name:       ref.Name,
		ImageURL:   ref.ImageURL,
		Category:   ref.Category,
		Favorited:  favorites.Has(ref.ClothingID),
	}
	summary, ok := summaries[ref.ClothingID]
	if !ok {
		return item
	}
	if item.Name == nil {
		item.Name = summary.Name
	}
	if item.ImageURL == nil {
		item.ImageURL = summary.ImageURL
	}
	if item.Category == nil {
		item.Category = summary.Category
	}
	return item
}

func sortDays(view MonthlyView) {
	sort.SliceStable(view, func(i, j int) bool {
		return view[i].Date < view[j].Date
	})
}
