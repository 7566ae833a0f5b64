package outfit

import (
	"github.com/yanqian/outfit-calendar/pkg/normalize"
	"github.com/yanqian/outfit-calendar/pkg/payload"
)

// DecodeMonthly turns a raw monthly payload into a MonthlyRecord. Both the
// {year, month, days} object and a bare day array are accepted, wrapped or not.
func DecodeMonthly(raw any) MonthlyRecord {
	body := payload.Unwrap(raw)
	if arr, ok := body.([]any); ok {
		return MonthlyRecord{Days: decodeDays(arr)}
	}
	obj := payload.Object(body)
	return MonthlyRecord{
		Year:  int(normalize.Int(obj["year"], 0)),
		Month: int(normalize.Int(obj["month"], 0)),
		Days:  decodeDays(payload.Array(obj["days"])),
	}
}

func decodeDays(arr []any) []DayRecord {
	days := make([]DayRecord, 0, len(arr))
	for _, entry := range arr {
		days = append(days, DecodeDay(entry))
	}
	return days
}

// DecodeDay decodes a single day. Malformed entries still yield a record so
// the number of days is preserved.
func DecodeDay(v any) DayRecord {
	obj := payload.Object(payload.Unwrap(v))
	return DayRecord{
		Date:               normalize.String(obj["date"], ""),
		Items:              decodeItems(payload.Array(obj["items"])),
		FeedbackScore:      normalize.NullableNumber(obj["feedbackScore"]),
		WeatherTemp:        normalize.NullableNumber(obj["weatherTemp"]),
		Condition:          normalize.NullableString(obj["condition"]),
		WeatherFeelsLike:   normalize.NullableNumber(obj["weatherFeelsLike"]),
		WeatherCloudAmount: normalize.NullableNumber(obj["weatherCloudAmount"]),
		RecoStrategy:       normalize.NullableString(obj["recoStrategy"]),
	}
}

// decodeItems keeps every entry carrying a numeric clothingId; entries
// without one are not item references.
func decodeItems(arr []any) []ItemRef {
	items := make([]ItemRef, 0, len(arr))
	for _, entry := range arr {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		id, ok := clothingID(obj["clothingId"])
		if !ok {
			continue
		}
		items = append(items, ItemRef{
			ClothingID: id,
			SortOrder:  int(normalize.Int(obj["sortOrder"], 0)),
			Name:       normalize.NullableString(obj["name"]),
			ImageURL:   normalize.NullableString(obj["imageUrl"]),
			Category:   normalize.NullableString(obj["category"]),
		})
	}
	return items
}

// DecodeSummaries decodes the batch summary response. Rows without a numeric
// clothingId are skipped.
func DecodeSummaries(raw any) []ClothingSummary {
	arr := payload.Array(payload.Unwrap(raw))
	out := make([]ClothingSummary, 0, len(arr))
	for _, entry := range arr {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		id, ok := clothingID(obj["clothingId"])
		if !ok {
			continue
		}
		out = append(out, ClothingSummary{
			ClothingID: id,
			Name:       normalize.NullableString(obj["name"]),
			ImageURL:   normalize.NullableString(obj["imageUrl"]),
			Category:   normalize.NullableString(obj["category"]),
		})
	}
	return out
}

func clothingID(v any) (int64, bool) {
	return normalize.WholeNumber(v)
}
