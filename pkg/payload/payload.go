// Package payload decodes loosely shaped upstream JSON bodies.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Decode turns a response body into a generic JSON value. An empty body
// decodes to nil.
func Decode(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return v, nil
}

// Unwrap strips a {success, data} envelope. Anything else is returned as is.
// Only one level is removed.
func Unwrap(v any) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return v
	}
	_, hasSuccess := obj["success"]
	data, hasData := obj["data"]
	if hasSuccess && hasData {
		return data
	}
	return v
}

// Failure reports whether v is an envelope explicitly marked as failed and
// returns its code and message.
func Failure(v any) (code, message string, failed bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return "", "", false
	}
	success, ok := obj["success"].(bool)
	if !ok || success {
		return "", "", false
	}
	code, _ = obj["code"].(string)
	message, _ = obj["message"].(string)
	return strings.TrimSpace(code), strings.TrimSpace(message), true
}

// Object returns v as a JSON object, or an empty object when it is not one.
func Object(v any) map[string]any {
	if obj, ok := v.(map[string]any); ok && obj != nil {
		return obj
	}
	return map[string]any{}
}

// Array returns v as a JSON array, or nil when it is not one.
func Array(v any) []any {
	arr, _ := v.([]any)
	return arr
}

// Path walks nested objects by key and returns nil as soon as a step is missing.
func Path(v any, keys ...string) any {
	cur := v
	for _, key := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}
