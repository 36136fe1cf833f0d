// Package openai implements the extraction, translation and insight ports
// against the OpenAI REST API using net/http directly; no SDK required.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	chatCompletionsURL = "https://api.openai.com/v1/chat/completions"
	transcriptionsURL  = "https://api.openai.com/v1/audio/transcriptions"
	translationsURL    = "https://api.openai.com/v1/audio/translations"

	maxResponseBytes = 1 << 20 // 1 MiB
)

// Client is the shared HTTP layer for the OpenAI adapters.
type Client struct {
	apiKey     string
	httpClient *http.Client
}

// NewClient builds the shared client. An empty apiKey makes every call
// return a descriptive error instead of panicking.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			// Network timeout; vision calls on large bills are the slow path.
			Timeout: 60 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// chat posts a chat completion request and returns the first choice's text.
func (c *Client) chat(ctx context.Context, req chatRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openai: OPENAI_API_KEY not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("openai: serialize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, chatCompletionsURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: build HTTP request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("openai: timeout or cancellation: %w", ctx.Err())
		}
		return "", fmt.Errorf("openai: HTTP call failed: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("openai: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp chatResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return "", fmt.Errorf("openai: API error (%s): %s", errResp.Error.Type, errResp.Error.Message)
		}
		return "", fmt.Errorf("openai: HTTP %d: %s", resp.StatusCode, string(rawBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(rawBody, &chatResp); err != nil {
		return "", fmt.Errorf("openai: deserialize response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("openai: model returned no choices")
	}
	return chatResp.Choices[0].Message.Content, nil
}

// jsonBlockRe captures from the first '{' to the last '}' so a JSON object
// survives being wrapped in prose.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSON pulls the first well-formed JSON object out of free text.
// Strips markdown code fences first, then falls back to a regex capture.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if close := strings.LastIndex(after, "```"); close != -1 {
			after = after[:close]
		}
		text = strings.TrimSpace(after)
	}
	if strings.HasPrefix(text, "{") {
		return text
	}
	return strings.TrimSpace(jsonBlockRe.FindString(text))
}
