// Package normalize converts untrusted JSON scalars into typed values.
//
// Every function is total: it never panics and always yields a usable value.
// Inputs are the values produced by encoding/json when decoding into any, so
// numbers arrive as float64. Numeric strings, NaN, infinities, booleans and nil
// are treated as absent and are never parsed.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// EpochDate is the date used when a payload carries no usable calendar day.
const EpochDate = "1970-01-01"

var (
	isoDateExact  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

// Number returns v when it is a finite number, otherwise fallback.
func Number(v any, fallback float64) float64 {
	if n, ok := finite(v); ok {
		return n
	}
	return fallback
}

// NullableNumber returns a pointer to v when it is a finite number and nil
// otherwise. Zero is a valid number and is preserved.
func NullableNumber(v any) *float64 {
	n, ok := finite(v)
	if !ok {
		return nil
	}
	return &n
}

// int64Limit is 2^63, exactly representable as a float64.
const int64Limit = 1 << 63

// Int returns v truncated to an integer when it is a finite number within the
// int64 range.
func Int(v any, fallback int64) int64 {
	n, ok := finite(v)
	if !ok || !fitsInt64(n) {
		return fallback
	}
	return int64(n)
}

// WholeNumber returns v as an int64 when it is an integral number within the
// int64 range.
func WholeNumber(v any) (int64, bool) {
	n, ok := finite(v)
	if !ok || n != math.Trunc(n) || !fitsInt64(n) {
		return 0, false
	}
	return int64(n), true
}

func fitsInt64(n float64) bool {
	return n >= -int64Limit && n < int64Limit
}

// String returns v when it is a string, otherwise fallback.
func String(v any, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

// NullableString returns a pointer to v when it is a string and nil otherwise.
// The empty string is a present value.
func NullableString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// ISODate maps v to a YYYY-MM-DD calendar day. Timestamps are cut to their
// date part; anything else becomes EpochDate.
func ISODate(v any) string {
	s, ok := v.(string)
	if !ok {
		return EpochDate
	}
	s = strings.TrimSpace(s)
	if isoDateExact.MatchString(s) {
		return s
	}
	if isoDatePrefix.MatchString(s) {
		return s[:10]
	}
	return EpochDate
}

// RoundTo rounds v to the given number of decimal digits.
func RoundTo(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

// PercentText renders a 0..1 ratio as a whole percentage such as "12%".
// Non-finite input renders as "-".
func PercentText(ratio float64) string {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return "-"
	}
	pct := math.Round(ratio * 100)
	if pct == 0 {
		pct = 0 // drop the sign of negative zero
	}
	return strconv.FormatFloat(pct, 'f', 0, 64) + "%"
}

func finite(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int32:
		n = float64(t)
	case int64:
		n = float64(t)
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
