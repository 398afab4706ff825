// internal/kpi/fields.go
package kpi

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/aguavida/kpi-backend/internal/domain"
)

// Raw records come out of json.Unmarshal into map[string]any, so a "number"
// may arrive as float64, json.Number or a string, depending on which export
// produced it. These helpers coerce without caring.

func fieldString(raw domain.RawOrder, keys ...string) (string, bool) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s, true
			}
		case json.Number:
			return t.String(), true
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64), true
		case int:
			return strconv.Itoa(t), true
		}
	}
	return "", false
}

func fieldFloat(raw domain.RawOrder, keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if f, ok := coerceFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// coercePositiveInt parses v as a quantity: any numeric representation,
// truncated toward zero, accepted only when the result is positive.
func coercePositiveInt(v any) (int, bool) {
	f, ok := coerceFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	n := int(f)
	if n <= 0 {
		return 0, false
	}
	return n, true
}

// leadingDigits extracts the first run of decimal digits in s, the way the
// legacy ordenpedido codes encode a quantity ("2-B19" -> 2).
func leadingDigits(s string) (int, bool) {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
