// Package parsing turns raw resume text into a structured record, preferring
// AI extraction and degrading to the regex field extractor.
package parsing

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/resume-insight/internal/ai"
	"github.com/spigell/resume-insight/internal/logger"
	"github.com/spigell/resume-insight/internal/normalize"
	"github.com/spigell/resume-insight/internal/resume"
)

const (
	// MethodAI marks records produced by a provider response.
	MethodAI = "ai_parsing"
	// MethodFallback marks records produced by the regex extractor.
	MethodFallback = "fallback_parsing"
	// MethodError marks an all-sentinel record after the fallback pass
	// itself failed.
	MethodError = "error_fallback"

	fallbackProvider = "regex_parser"
	unknownProvider  = "unknown"
)

// PromptTemplate asks the model for the seven resume fields as bare JSON.
const PromptTemplate = `Parse the following resume text and extract structured information.
Return a JSON object with the following fields:
- name: Full name of the candidate
- email: Email address
- phone: Phone number
- skills: List of technical skills
- experience: List of work experiences with company, role, and duration
- education: List of educational qualifications
- summary: Brief professional summary

Resume text:
{{INPUT}}

Return only valid JSON without any additional text.`

var recordFields = []string{"name", "email", "phone", "skills", "experience", "education", "summary"}

type orchestrator interface {
	Process(ctx context.Context, input normalize.Value) *ai.Result
}

// ParseResult is the agent's answer: the record plus how it was obtained.
type ParseResult struct {
	Success  bool          `json:"success"`
	Record   resume.Record `json:"parsed_data"`
	Method   string        `json:"method"`
	Provider string        `json:"provider,omitempty"`
	Error    string        `json:"error,omitempty"`
}

type Agent struct {
	orch      orchestrator
	extractor *resume.FieldExtractor
	logger    *zap.Logger
}

func New(orch orchestrator, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Agent{
		orch:      orch,
		extractor: resume.NewFieldExtractor(),
		logger:    logger,
	}
}

// Parse extracts a structured record from resume text. AI output is decoded
// and patched field by field from the regex extractor; any failure along the
// way degrades to a pure regex pass instead of returning an error.
func (a *Agent) Parse(ctx context.Context, text string) *ParseResult {
	if strings.TrimSpace(text) == "" {
		return a.fallback("")
	}

	result := a.orch.Process(ctx, normalize.Text(text))
	if result == nil || !result.Success || result.Response == "" {
		a.logger.Warn("ai parsing failed, using regex fallback")
		return a.fallback(text)
	}

	decoded := normalize.SafeDecode(normalize.Text(result.Response), map[string]any{})
	data, ok := decoded.(map[string]any)
	if !ok {
		a.logger.Warn("ai response is not an object, using regex fallback")
		return a.fallback(text)
	}

	record, err := a.buildRecord(data, text)
	if err != nil {
		a.logger.Warn("ai response could not be decoded, using regex fallback", zap.Error(err))
		return a.fallback(text)
	}

	provider := result.PrimaryProvider
	if provider == "" {
		provider = unknownProvider
	}

	logger.WithProvider(a.logger, provider, "").Info("resume parsed",
		zap.String(logger.FieldMethod, MethodAI),
	)

	return &ParseResult{
		Success:  true,
		Record:   record,
		Method:   MethodAI,
		Provider: provider,
	}
}

func (a *Agent) fallback(text string) (res *ParseResult) {
	// The regex pass must never take the caller down.
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("regex fallback failed", zap.Any("panic", r))
			res = &ParseResult{
				Record: resume.EmptyRecord(),
				Method: MethodError,
				Error:  fmt.Sprint(r),
			}
		}
	}()

	record := a.extractor.Extract(text)

	a.logger.Info("resume parsed",
		zap.String(logger.FieldMethod, MethodFallback),
		zap.String(logger.FieldProvider, fallbackProvider),
	)

	return &ParseResult{
		Success:  true,
		Record:   record,
		Method:   MethodFallback,
		Provider: fallbackProvider,
	}
}

// buildRecord fills absent or empty fields from the regex extractor before
// decoding, so a partial AI answer still yields a complete record.
func (a *Agent) buildRecord(data map[string]any, text string) (resume.Record, error) {
	patched := make(map[string]any, len(data))
	for k, v := range data {
		patched[k] = v
	}

	var extracted *resume.Record
	for _, field := range recordFields {
		if hasValue(patched[field]) {
			continue
		}
		if extracted == nil {
			r := a.extractor.Extract(text)
			extracted = &r
		}
		patched[field] = extractedField(extracted, field)
	}

	var record resume.Record
	cfg := &mapstructure.DecoderConfig{
		Metadata:   nil,
		Result:     &record,
		TagName:    "json",
		DecodeHook: stringifyHook,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return resume.Record{}, err
	}
	if err := decoder.Decode(patched); err != nil {
		return resume.Record{}, err
	}

	record.Clamp()

	return record, nil
}

func hasValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	default:
		return true
	}
}

func extractedField(r *resume.Record, field string) any {
	switch field {
	case "name":
		return r.Name
	case "email":
		return r.Email
	case "phone":
		return r.Phone
	case "skills":
		return r.Skills
	case "experience":
		return r.Experience
	case "education":
		return r.Education
	case "summary":
		return r.Summary
	}

	return nil
}

// stringifyHook renders structured provider output into strings: models often
// return experience entries as objects rather than flat lines.
func stringifyHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String || from.Kind() == reflect.String {
		return data, nil
	}

	switch from.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		return string(encoded), nil
	default:
		return fmt.Sprint(data), nil
	}
}
