// Package openai implements the Interpreter port against any
// OpenAI-compatible chat-completions endpoint (OpenRouter, OpenAI, local
// gateways) using per-call, user-supplied credentials.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lorenzomaiuri-dev/tarots-os/internal/domain"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Client posts chat-completion requests. It holds no credentials: the
// model configuration arrives with every call and is never cached.
type Client struct {
	httpClient  *http.Client
	appName     string
	siteURL     string
	temperature float64
	logger      *slog.Logger
}

// NewClient builds a client. appName and siteURL become the X-Title and
// HTTP-Referer attribution headers. The http.Client must carry a finite
// timeout so a hung upstream cannot stall a reading silently.
func NewClient(httpClient *http.Client, appName, siteURL string, temperature float64, logger *slog.Logger) *Client {
	return &Client{
		httpClient:  httpClient,
		appName:     appName,
		siteURL:     siteURL,
		temperature: temperature,
		logger:      logger,
	}
}

// chatRequest / chatResponse mirror the OpenAI-compatible API shapes.
type chatRequest struct {
	Model       string               `json:"model"`
	Messages    []domain.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate submits the prompt and returns the completion text. Missing
// credentials fail before any network I/O. Non-2xx responses surface the
// upstream error message when present; network failures are classified as
// transport errors. An empty completion is returned as an empty string,
// not an error.
func (c *Client) Generate(ctx context.Context, messages []domain.ChatMessage, cfg domain.AIModelConfig) (string, error) {
	if cfg.APIKey == "" {
		return "", fmt.Errorf("%w: set an API key in settings", domain.ErrMissingCredentials)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	body, err := json.Marshal(chatRequest{
		Model:       cfg.ModelID,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(baseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("HTTP-Referer", c.siteURL)
	req.Header.Set("X-Title", c.appName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrLLMTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", domain.ErrLLMTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "interpretation request failed",
			"status", resp.StatusCode, "model", cfg.ModelID)
		return "", fmt.Errorf("%w: %s", domain.ErrUpstreamLLM, upstreamMessage(resp, respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", domain.ErrLLMTransport, err)
	}

	if len(chatResp.Choices) == 0 {
		return "", nil
	}
	return chatResp.Choices[0].Message.Content, nil
}

// upstreamMessage extracts the error body's message, best effort, and
// falls back to the HTTP status text.
func upstreamMessage(resp *http.Response, body []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return http.StatusText(resp.StatusCode)
}
