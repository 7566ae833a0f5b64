package outfit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeMonthlyShapes(t *testing.T) {
	bare := DecodeMonthly(mustDecode(t, `{"year":2024,"month":5,"days":[{"date":"2024-05-01"}]}`))
	wrapped := DecodeMonthly(mustDecode(t, `{"success":true,"data":{"year":2024,"month":5,"days":[{"date":"2024-05-01"}]}}`))
	require.Equal(t, bare, wrapped)
	require.Equal(t, 2024, bare.Year)
	require.Equal(t, 5, bare.Month)
	require.Len(t, bare.Days, 1)

	list := DecodeMonthly(mustDecode(t, `[{"date":"2024-05-01"},{"date":"2024-05-02"}]`))
	require.Len(t, list.Days, 2)
}

func TestDecodeMonthlyMalformed(t *testing.T) {
	for _, raw := range []any{nil, "oops", 12.0, map[string]any{"days": "none"}} {
		got := DecodeMonthly(raw)
		require.Empty(t, got.Days)
	}
}

func TestDecodeDayTolerance(t *testing.T) {
	day := DecodeDay(mustDecode(t, `{"items":[
		{"clothingId":5,"sortOrder":"2"},
		{"clothingId":"6"},
		{"clothingId":1.5},
		{"clothingId":1e19},
		{"clothingId":-1e300},
		"junk",
		{"clothingId":8,"sortOrder":3,"name":"Denim","imageUrl":null}
	]}`))

	require.Equal(t, "", day.Date)
	require.Len(t, day.Items, 2)
	require.Equal(t, ItemRef{ClothingID: 5, SortOrder: 0}, day.Items[0])
	require.Equal(t, int64(8), day.Items[1].ClothingID)
	require.Equal(t, "Denim", *day.Items[1].Name)
	require.Nil(t, day.Items[1].ImageURL)
	require.Nil(t, day.FeedbackScore)

	require.Equal(t, DayRecord{Items: []ItemRef{}}, DecodeDay(nil))
}

func TestDecodeSummaries(t *testing.T) {
	got := DecodeSummaries(mustDecode(t, `{"success":true,"data":[
		{"clothingId":3,"name":"Shirt","imageUrl":"https://img/3.png","category":"TOP"},
		{"name":"orphan"},
		{"clothingId":7}
	]}`))

	require.Len(t, got, 2)
	require.Equal(t, "Shirt", *got[0].Name)
	require.Equal(t, int64(7), got[1].ClothingID)
	require.Nil(t, got[1].Name)

	require.Empty(t, DecodeSummaries(map[string]any{"unexpected": true}))
}
