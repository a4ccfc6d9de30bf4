// Package jsonsafe provides typed accessors over loosely-typed decoded JSON.
//
// Upstream APIs in this project return untyped JSON with inconsistent
// shapes; every optional field is read through these helpers so that a
// missing or mistyped value degrades to a default instead of panicking.
package jsonsafe

import (
	"strconv"
	"strings"
)

// String returns the string at key, or "" when absent or not a string.
func String(payload map[string]any, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// StringOr returns the string at key, or fallback when absent or empty.
func StringOr(payload map[string]any, key, fallback string) string {
	if s := String(payload, key); s != "" {
		return s
	}
	return fallback
}

// Map returns the object at key, or nil when absent or not an object.
func Map(payload map[string]any, key string) map[string]any {
	if v, ok := payload[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

// Slice returns the array at key, or nil when absent or not an array.
func Slice(payload map[string]any, key string) []any {
	if v, ok := payload[key]; ok {
		if s, ok := v.([]any); ok {
			return s
		}
	}
	return nil
}

// Number returns the number at key, or 0 when absent.
// String forms are parsed; the empty string counts as 0 (the Census API
// encodes numeric columns as strings and blanks out missing values).
func Number(payload map[string]any, key string) float64 {
	v, ok := payload[key]
	if !ok {
		return 0
	}
	return AsNumber(v)
}

// Int returns the number at key truncated to an int.
func Int(payload map[string]any, key string) int {
	return int(Number(payload, key))
}

// AsString converts a scalar JSON value to its string form.
func AsString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	}
	return ""
}

// AsNumber converts a scalar JSON value to a float64, substituting 0 for
// anything unparseable.
func AsNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return 0
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}
