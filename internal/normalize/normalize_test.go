package normalize

import (
	"reflect"
	"testing"
)

func TestSafeDecodeIdentityOnStructured(t *testing.T) {
	t.Parallel()

	input := map[string]any{"name": "Jane Doe", "skills": []any{"Go"}}

	decoded := SafeDecode(Structured(input), nil)

	result, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", decoded)
	}
	if !reflect.DeepEqual(result, input) {
		t.Fatalf("structured input must pass through unchanged, got %+v", result)
	}
}

func TestSafeDecodeIdentityOnList(t *testing.T) {
	t.Parallel()

	input := []any{"one", "two"}

	decoded := SafeDecode(List(input), nil)
	if !reflect.DeepEqual(decoded, input) {
		t.Fatalf("list input must pass through unchanged, got %+v", decoded)
	}
}

func TestSafeDecodeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect any
	}{
		{
			name:   "valid json object",
			input:  `{"email": "a@b.io"}`,
			expect: map[string]any{"email": "a@b.io"},
		},
		{
			name:   "fenced json",
			input:  "```json\n{\"email\": \"a@b.io\"}\n```",
			expect: map[string]any{"email": "a@b.io"},
		},
		{
			name:   "malformed pseudo json wraps raw text",
			input:  `{"invalid": json}`,
			expect: map[string]any{RawResponseKey: `{"invalid": json}`},
		},
		{
			name:   "plain text wraps raw text",
			input:  "just some words",
			expect: map[string]any{RawResponseKey: "just some words"},
		},
		{
			name:   "empty text returns default",
			input:  "   ",
			expect: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := SafeDecode(Text(tt.input), nil)
			if !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %+v, got %+v", tt.expect, got)
			}
		})
	}
}

func TestSafeDecodeScalarNeverRaises(t *testing.T) {
	t.Parallel()

	got := SafeDecode(Scalar(42), nil)

	result, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", got)
	}
	if result[DataKey] != 42 {
		t.Fatalf("expected scalar wrapped under %q, got %+v", DataKey, result)
	}
}

func TestFromTagsShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		kind  Kind
	}{
		{"map", map[string]any{}, KindStructured},
		{"list", []any{1}, KindList},
		{"string", "text", KindText},
		{"int", 7, KindScalar},
		{"nil", nil, KindScalar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := From(tt.input).Kind; got != tt.kind {
				t.Fatalf("expected kind %v, got %v", tt.kind, got)
			}
		})
	}
}

func TestAgentResponseGuaranteedKeys(t *testing.T) {
	t.Parallel()

	got := AgentResponse(Text(`{"overall_score": 85}`))

	if got["success"] != true {
		t.Fatalf("expected success true, got %v", got["success"])
	}
	if got["error"] != nil {
		t.Fatalf("expected nil error, got %v", got["error"])
	}
	// json decodes numbers as float64
	if got["overall_score"] != float64(85) {
		t.Fatalf("expected existing overall_score kept, got %v", got["overall_score"])
	}
	for _, key := range []string{"data", "parsed_data", "recommendations"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("missing guaranteed key %q", key)
		}
	}
}

func TestAgentResponseIdempotent(t *testing.T) {
	t.Parallel()

	once := AgentResponse(Structured(map[string]any{"name": "Jane"}))
	twice := AgentResponse(Structured(once))

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("expected idempotent normalization\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestExtractKey(t *testing.T) {
	t.Parallel()

	v := Text(`{"parsed_data": {"name": "Jane"}}`)

	got := ExtractKey(v, "parsed_data", nil)
	parsed, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", got)
	}
	if parsed["name"] != "Jane" {
		t.Fatalf("unexpected extraction: %+v", parsed)
	}

	if def := ExtractKey(Text("not json"), "missing", "fallback"); def != "fallback" {
		t.Fatalf("expected default for missing key, got %v", def)
	}
}

func TestCanonicalDeterministic(t *testing.T) {
	t.Parallel()

	v := Structured(map[string]any{"b": 2, "a": 1})

	first := v.Canonical()
	second := v.Canonical()
	if first != second {
		t.Fatalf("canonical encoding must be stable: %q vs %q", first, second)
	}
	if first != `{"a":1,"b":2}` {
		t.Fatalf("expected sorted keys, got %q", first)
	}
}
