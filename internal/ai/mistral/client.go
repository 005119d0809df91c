// Package mistral adapts the Mistral chat completions HTTP API to the
// provider interface used by the orchestrator.
package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-insight/internal/ai"
	"github.com/spigell/resume-insight/internal/utils"
)

const (
	apiURL       = "https://api.mistral.ai/v1/chat/completions"
	defaultModel = "mistral-tiny"
	contentType  = "application/json"
)

type Config struct {
	APIKey     string
	Model      string
	APIURL     string
	MaxRetries int
	RetryDelay time.Duration
}

type Client struct {
	apiKey     string
	model      string
	apiURL     string
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
	HTTPClient *http.Client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mistral api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	if cfg.APIURL == "" {
		cfg.APIURL = apiURL
	}

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}

	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		apiURL:     cfg.APIURL,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (c *Client) Name() string {
	return ai.ProviderMistral
}

func (c *Client) Model() string {
	return c.model
}

// Invoke sends the prompt as a single user message and retries transient
// failures up to the configured attempt count.
func (c *Client) Invoke(ctx context.Context, prompt string) ai.ProviderResponse {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ai.FailureResponse(c.Name(), fmt.Errorf("prompt must not be empty"), 1)
	}

	var lastErr error
	attempts := c.maxRetries + 1

	attempt := 1
	for ; attempt <= attempts; attempt++ {
		text, err := c.complete(ctx, prompt)
		if err == nil {
			return ai.SuccessResponse(c.Name(), text, attempt)
		}

		lastErr = err
		c.logger.Debug("mistral request failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)

		if attempt < attempts {
			if waitErr := utils.WaitFor(ctx, c.retryDelay); waitErr != nil {
				lastErr = waitErr
				break
			}
		}
	}
	if attempt > attempts {
		attempt = attempts
	}

	return ai.FailureResponse(c.Name(), lastErr, attempt)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", contentType)

	c.logger.Debug("make request", zap.String("url", req.URL.String()), zap.String("model", c.model))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("bad status: %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("mistral api returned no choices")
	}

	text := strings.TrimSpace(response.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("mistral api returned empty response")
	}

	return text, nil
}
