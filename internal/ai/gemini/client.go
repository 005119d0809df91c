// Package gemini adapts the Google GenAI client to the provider contract.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/resume-insight/internal/ai"
	"github.com/spigell/resume-insight/internal/utils"
)

const defaultModel = "gemini-2.5-pro"

// modelCaller is the slice of the genai client the generator depends on,
// kept separate so tests can inject fakes.
type modelCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config holds Gemini adapter settings. MaxRetries counts extra attempts
// after the first; RetryDelay is a fixed pause between attempts, no backoff.
type Config struct {
	APIKey     string
	Model      string
	MaxRetries int
	RetryDelay time.Duration
}

// Generator wraps the Google GenAI client to provide simple prompt-based
// generation with local retries. It implements ai.Provider.
type Generator struct {
	models     modelCaller
	model      string
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// New creates a Generator configured for the Gemini API backend.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	retryDelay := cfg.RetryDelay
	if retryDelay == 0 {
		retryDelay = time.Second
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		models:     client.Models,
		model:      model,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     logger,
	}, nil
}

func (g *Generator) Name() string { return ai.ProviderGemini }

// Model returns the configured model identifier.
func (g *Generator) Model() string { return g.model }

// Invoke sends the prompt to Gemini, retrying on any error including empty
// responses. Failures never propagate as Go errors.
func (g *Generator) Invoke(ctx context.Context, prompt string) ai.ProviderResponse {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ai.FailureResponse(ai.ProviderGemini, errors.New("prompt must not be empty"), 1)
	}

	var lastErr error
	attempt := 1
	for ; attempt <= g.maxRetries+1; attempt++ {
		text, err := g.generate(ctx, prompt)
		if err == nil {
			return ai.SuccessResponse(ai.ProviderGemini, text, attempt)
		}
		lastErr = err

		if attempt > g.maxRetries {
			break
		}

		g.logger.Debug("gemini call failed, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if werr := utils.WaitFor(ctx, g.retryDelay); werr != nil {
			lastErr = werr
			break
		}
	}
	if attempt > g.maxRetries+1 {
		attempt = g.maxRetries + 1
	}

	return ai.FailureResponse(ai.ProviderGemini, lastErr, attempt)
}

func (g *Generator) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}
