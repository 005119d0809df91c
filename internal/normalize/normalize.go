// Package normalize converts arbitrary provider and agent output into
// well-shaped structured records. Nothing in this package returns an error:
// every malformed input degrades to a wrapped or default value.
package normalize

import (
	"encoding/json"
	"strings"
)

// Keys used when a payload has to be wrapped rather than decoded.
const (
	// RawResponseKey holds text that failed structured decoding.
	RawResponseKey = "raw_response"
	// DataKey holds scalar payloads.
	DataKey = "data"
)

// SafeDecode yields a structured value for any input shape. Already-structured
// mappings and lists are returned unchanged; decoding is attempted only on
// text. def is returned for empty text and defaults to an empty mapping.
func SafeDecode(v Value, def any) any {
	if def == nil {
		def = map[string]any{}
	}

	switch v.Kind {
	case KindStructured:
		return v.Map
	case KindList:
		return v.List
	case KindText:
		return decodeText(v.Text, def)
	default:
		return map[string]any{DataKey: v.Scalar}
	}
}

func decodeText(text string, def any) any {
	if strings.TrimSpace(text) == "" {
		return def
	}

	cleaned := StripFences(text)

	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return map[string]any{RawResponseKey: text}
	}
	return decoded
}

// StripFences removes markdown code fences that models often wrap JSON in.
func StripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// AgentResponse normalizes any agent output into a record carrying the
// guaranteed keys success, data, overall_score, parsed_data, recommendations
// and error regardless of what the source supplied. Existing keys are kept
// as-is and only the missing ones are filled with defaults, so applying it
// twice produces the same result as once.
func AgentResponse(v Value) map[string]any {
	decoded := SafeDecode(v, map[string]any{})

	data, ok := decoded.(map[string]any)
	if !ok {
		data = map[string]any{RawResponseKey: decoded}
	}

	normalized := make(map[string]any, len(data)+6)
	for key, value := range data {
		normalized[key] = value
	}

	defaults := []struct {
		key string
		val any
	}{
		{"success", true},
		{"data", data},
		{"overall_score", 0},
		{"parsed_data", map[string]any{}},
		{"recommendations", []any{}},
		{"error", nil},
	}
	for _, def := range defaults {
		if _, ok := normalized[def.key]; !ok {
			normalized[def.key] = def.val
		}
	}

	return normalized
}

// ExtractKey safely pulls a single key out of an agent response of any shape.
// def is returned when the response is not a mapping or the key is absent.
func ExtractKey(v Value, key string, def any) any {
	decoded := SafeDecode(v, map[string]any{})

	data, ok := decoded.(map[string]any)
	if !ok {
		return def
	}

	value, ok := data[key]
	if !ok {
		return def
	}
	return value
}
