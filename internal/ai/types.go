// Package ai implements the multi-provider orchestration layer: provider
// adapters are invoked in priority order with retry, rate limiting and
// optional caching, and their outputs are shaped into a single result that is
// well-formed even when every provider is down.
package ai

import "context"

// Provider identifiers for the built-in adapters.
const (
	ProviderGemini  = "gemini"
	ProviderMistral = "mistral"
)

// ProviderResponse is the result of one provider invocation attempt. Exactly
// one of Text/Error is populated, matching Success.
type ProviderResponse struct {
	Provider string `json:"provider"`
	Success  bool   `json:"success"`
	Text     string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
	// Attempt is the 1-based retry counter at the time of success or final
	// failure.
	Attempt int `json:"attempt,omitempty"`
}

// SuccessResponse builds a successful provider response.
func SuccessResponse(provider, text string, attempt int) ProviderResponse {
	return ProviderResponse{
		Provider: provider,
		Success:  true,
		Text:     text,
		Attempt:  attempt,
	}
}

// FailureResponse builds a failed provider response.
func FailureResponse(provider string, err error, attempt int) ProviderResponse {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return ProviderResponse{
		Provider: provider,
		Success:  false,
		Error:    msg,
		Attempt:  attempt,
	}
}

// Provider is the capability set every adapter exposes. Invoke never returns
// a Go error: transport and provider failures surface only as a failed
// ProviderResponse.
type Provider interface {
	Name() string
	Invoke(ctx context.Context, prompt string) ProviderResponse
}

// ReturnMode selects how successful provider responses are shaped.
type ReturnMode string

const (
	// ModeAggregate collapses successes into one primary response.
	ModeAggregate ReturnMode = "aggregate"
	// ModeCompare preserves every success for side-by-side inspection.
	ModeCompare ReturnMode = "compare"
	// ModeRaw returns the unshaped success map. Unknown modes fall back
	// to raw as well.
	ModeRaw ReturnMode = "raw"
)

// Result is the shaped output of one orchestration. Which fields are
// populated depends on the return mode; fallback results set Fallback and
// carry the error plus operator recommendations.
type Result struct {
	Success bool `json:"success"`

	// Aggregate mode.
	Response        string   `json:"response,omitempty"`
	ProvidersUsed   []string `json:"providers_used,omitempty"`
	PrimaryProvider string   `json:"primary_provider,omitempty"`
	Aggregated      bool     `json:"aggregated,omitempty"`

	// Compare and raw modes.
	Responses      map[string]ProviderResponse `json:"responses,omitempty"`
	ComparisonMode bool                        `json:"comparison_mode,omitempty"`
	ProvidersCount int                         `json:"providers_count,omitempty"`

	// Fallback.
	Fallback        bool     `json:"fallback,omitempty"`
	Error           string   `json:"error,omitempty"`
	Message         string   `json:"message,omitempty"`
	InputReceived   bool     `json:"input_received,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}
