package dashboard

import (
	"strings"

	"github.com/yanqian/outfit-calendar/pkg/normalize"
	"github.com/yanqian/outfit-calendar/pkg/payload"
)

// placeholder is rendered for unknown item names.
const placeholder = "-"

// ToOverviewUI normalizes a raw overview payload. It never fails; missing or
// malformed fields fall back to zero, nil or placeholder values.
func ToOverviewUI(raw any) OverviewUI {
	dto := unwrapOverview(raw)
	summary := payload.Object(dto["summary"])
	funnel := payload.Object(dto["funnel"])

	return OverviewUI{
		Range: Range{
			From: normalize.String(payload.Path(dto, "range", "from"), normalize.EpochDate),
			To:   normalize.String(payload.Path(dto, "range", "to"), normalize.EpochDate),
		},
		Summary: Summary{
			MonthlyOutfitCount:   normalize.Number(summary["monthlyOutfitCount"], 0),
			FeedbackCount:        normalize.Number(summary["feedbackCount"], 0),
			FeedbackRate:         normalize.Number(summary["feedbackRate"], 0),
			MostUsedRecoStrategy: normalize.NullableString(summary["mostUsedRecoStrategy"]),
			MostCommonCondition:  normalize.NullableString(summary["mostCommonCondition"]),
			AvgTemp:              normalize.NullableNumber(summary["avgTemp"]),
			AvgFeelsLike:         normalize.NullableNumber(summary["avgFeelsLike"]),
		},
		Funnel: Funnel{
			Saved:    normalize.Number(funnel["saved"], 0),
			Feedback: normalize.Number(funnel["feedback"], 0),
		},
		Donut:                    normalizeDonut(dto["categoryDonut"]),
		TopClickedItems:          normalizeTopItems(dto["topClickedItems"]),
		TopFavoritedClickedItems: normalizeTopItems(dto["topFavoritedClickedItems"]),
	}
}

// RatioToPercentText renders a 0..1 ratio as a whole percentage.
func RatioToPercentText(ratio float64) string {
	return normalize.PercentText(ratio)
}

// unwrapOverview accepts the DTO itself, a {success, data} envelope, or a bare
// {data: dto} wrapper.
func unwrapOverview(raw any) map[string]any {
	obj := payload.Object(payload.Unwrap(raw))
	_, hasRange := obj["range"]
	_, hasSummary := obj["summary"]
	if hasRange && hasSummary {
		return obj
	}
	if inner, ok := obj["data"].(map[string]any); ok {
		return inner
	}
	return obj
}

func normalizeDonut(v any) Donut {
	obj := payload.Object(v)
	basis := BasisAllClicks
	if s, _ := obj["basis"].(string); DonutBasis(s) == BasisFavoritedClicks {
		basis = BasisFavoritedClicks
	}

	rows := payload.Array(obj["items"])
	data := make([]DonutDatum, 0, len(rows))
	for _, row := range rows {
		item, ok := row.(map[string]any)
		if !ok {
			continue
		}
		count := normalize.NullableNumber(item["count"])
		if count == nil {
			continue
		}
		category := normalize.ParseCategory(item["category"])
		ratioRaw := normalize.Number(item["ratio"], 0)
		data = append(data, DonutDatum{
			Category: category,
			Name:     category.Label(),
			Value:    *count,
			RatioRaw: ratioRaw,
			Ratio:    normalize.RoundTo(ratioRaw, 4),
		})
	}

	return Donut{
		Basis:       basis,
		TotalClicks: normalize.Number(obj["totalClicks"], 0),
		Data:        data,
	}
}

// normalizeTopItems drops rows whose clothingId is not a positive number.
func normalizeTopItems(v any) []TopItem {
	rows := payload.Array(v)
	items := make([]TopItem, 0, len(rows))
	for _, row := range rows {
		obj, ok := row.(map[string]any)
		if !ok {
			continue
		}
		id := normalize.Int(obj["clothingId"], 0)
		if id <= 0 {
			continue
		}
		name := normalize.String(obj["name"], "")
		if strings.TrimSpace(name) == "" {
			name = placeholder
		}
		items = append(items, TopItem{
			ClothingID: id,
			Name:       name,
			Category:   normalize.ParseCategory(obj["category"]),
			Count:      normalize.Number(obj["count"], 0),
			ImageURL:   normalize.NullableString(obj["imageUrl"]),
		})
	}
	return items
}
