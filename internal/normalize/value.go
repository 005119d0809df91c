package normalize

import "encoding/json"

// Kind discriminates the shape of a boundary value so downstream code can
// branch exhaustively instead of sniffing runtime types.
type Kind int

const (
	// KindStructured is a key/value mapping.
	KindStructured Kind = iota
	// KindList is an ordered sequence.
	KindList
	// KindText is raw text that may or may not contain encoded data.
	KindText
	// KindScalar is any other single value.
	KindScalar
)

// Value is a tagged variant constructed once at the system boundary.
// Exactly one payload field is meaningful for a given Kind.
type Value struct {
	Kind   Kind
	Map    map[string]any
	List   []any
	Text   string
	Scalar any
}

// Structured wraps an existing mapping.
func Structured(m map[string]any) Value {
	if m == nil {
		m = map[string]any{}
	}
	return Value{Kind: KindStructured, Map: m}
}

// List wraps an ordered sequence.
func List(l []any) Value {
	return Value{Kind: KindList, List: l}
}

// Text wraps raw text.
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Scalar wraps any other value.
func Scalar(v any) Value {
	return Value{Kind: KindScalar, Scalar: v}
}

// From converts an arbitrary runtime value into a tagged Value. This is the
// only place shape sniffing happens; everything after it switches on Kind.
func From(v any) Value {
	switch val := v.(type) {
	case Value:
		return val
	case map[string]any:
		return Structured(val)
	case []any:
		return List(val)
	case string:
		return Text(val)
	default:
		return Scalar(v)
	}
}

// Canonical returns a deterministic JSON encoding of the value, suitable for
// fingerprinting. Map keys are sorted by encoding/json.
func (v Value) Canonical() string {
	var payload any
	switch v.Kind {
	case KindStructured:
		payload = v.Map
	case KindList:
		payload = v.List
	case KindText:
		payload = v.Text
	default:
		payload = v.Scalar
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// Unmarshalable scalars still need a stable key.
		return "unencodable"
	}
	return string(data)
}

// PromptText renders the value as text for prompt interpolation. Text values
// pass through untouched; everything else is JSON-encoded.
func (v Value) PromptText() string {
	if v.Kind == KindText {
		return v.Text
	}
	return v.Canonical()
}
