// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package modelout parses structured fields out of free-text model
// responses. Coercion happens here, at the role boundary, so business
// logic never sees duck-typed values.
package modelout

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ExtractJSON returns the outermost {...} span in text. Models often
// wrap the object in prose or code fences despite instructions.
func ExtractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// CoerceText forces an arbitrary JSON value to plain text. Strings are
// unquoted, numbers and booleans are formatted, and structured values
// are kept as their raw JSON text. Empty input yields "".
func CoerceText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}

	return strings.TrimSpace(string(raw))
}

// CoerceScore parses a JSON value as a number on the given scale,
// clamping into [min, max]. Quoted numbers ("8") are accepted. The
// second return is false when no number can be recovered.
func CoerceScore(raw json.RawMessage, min, max float64) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return clamp(n, min, max), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return clamp(parsed, min, max), true
		}
	}

	return 0, false
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
