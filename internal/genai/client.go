// internal/genai/client.go
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tdlr-processor/internal/common/config"
	apperrors "tdlr-processor/internal/common/errors"
	"tdlr-processor/internal/common/logger"
)

// ModelConfig carries the per-request model settings.
type ModelConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Client is the reasoning service boundary: one prompt in, raw text out.
// Implementations own any timeout or retry policy; the pipeline assumes none.
type Client interface {
	Execute(ctx context.Context, prompt string, cfg ModelConfig) (string, error)
}

// HTTPClient talks to an OpenAI-compatible chat completions endpoint.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logger.Logger
}

func NewHTTPClient(cfg config.GenAIConfig, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: config.GetDuration(cfg.Timeout),
		},
		logger: log.With(map[string]interface{}{
			"component": "genai-client",
		}),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
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

// Execute sends the prompt synchronously and returns the raw completion text.
// Transient failures (transport errors, timeouts, 408/429/5xx) surface as
// SERVICE_UNAVAILABLE; anything the endpoint refused outright surfaces as
// SERVICE_REJECTED.
func (c *HTTPClient) Execute(ctx context.Context, prompt string, cfg ModelConfig) (string, error) {
	body, _ := json.Marshal(chatRequest{
		Model:       cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", apperrors.NewServiceRejectedError(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", apperrors.NewServiceUnavailableError("request timed out: " + err.Error())
		}
		return "", apperrors.NewServiceUnavailableError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		detail := fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))

		if isTransientStatus(resp.StatusCode) {
			return "", apperrors.NewServiceUnavailableError(detail)
		}
		return "", apperrors.NewServiceRejectedError(detail)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperrors.NewServiceRejectedError("invalid response envelope: " + err.Error())
	}
	if len(parsed.Choices) == 0 {
		return "", apperrors.NewServiceRejectedError("response contained no choices")
	}

	text := parsed.Choices[0].Message.Content

	c.logger.Debug("completion received", map[string]interface{}{
		"model":        cfg.Model,
		"responseSize": len(text),
	})

	return text, nil
}

func isTransientStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= 500
}
