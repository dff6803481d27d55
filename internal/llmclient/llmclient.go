// Package llmclient implements planner.LMClient against an OpenAI Chat
// Completions-compatible endpoint, grounded on
// horos47/services/gpufeeder's VLLMHTTPClient request/response shape,
// adapted from multi-part image content to a plain two-message
// system/user exchange since the planner only ever sends text.
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hazyhaar/autoword-vnext/internal/safeio"
)

// Client drives one text-in/text-out chat completion call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	log        *slog.Logger
}

// Option configures a Client at construction.
type Option func(*Client)

// WithBaseURL overrides the default https://api.openai.com/v1 endpoint,
// for OpenAI-compatible self-hosted or vendor-neutral gateways.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithTimeout overrides the default per-call HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger overrides the default slog.Default() logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New constructs a Client bound to apiKey and model.
func New(apiKey, model string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    "https://api.openai.com/v1",
		apiKey:     apiKey,
		model:      model,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Generate implements planner.LMClient.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llmclient: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llmclient: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llmclient: request failed: %w", err)
	}
	defer resp.Body.Close()
	duration := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.log.ErrorContext(ctx, "llmclient: non-200 response", "status", resp.StatusCode, "duration", duration)
		return "", fmt.Errorf("llmclient: server returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := safeio.LimitedReadAll(resp.Body, safeio.MaxLMResponseBytes)
	if err != nil {
		return "", fmt.Errorf("llmclient: read response: %w", err)
	}
	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("llmclient: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("llmclient: response contained no choices")
	}

	c.log.DebugContext(ctx, "llmclient: reply received", "duration", duration, "tokens", decoded.Usage.TotalTokens, "finish_reason", decoded.Choices[0].FinishReason)
	return decoded.Choices[0].Message.Content, nil
}
