// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/synth-engine/internal/httputil"
)

// anthropicAPIURL is the Messages API endpoint. Package-level var for
// test substitution.
var anthropicAPIURL = "https://api.anthropic.com/v1/messages"

const anthropicVersion = "2023-06-01"

// Anthropic calls the Claude Messages API. One Invoke is one request;
// 429/5xx handling is delegated to httputil.DoWithRetry and everything
// else surfaces as an error for the Client wrapper to retry.
type Anthropic struct {
	APIKey string
	Client *http.Client
}

// NewAnthropic returns an Anthropic provider using http.DefaultClient.
func NewAnthropic(apiKey string) *Anthropic {
	return &Anthropic{APIKey: apiKey}
}

// anthropicRequest is the request body for the Messages API.
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature float32            `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

// anthropicMessage is a single message in the conversation. Content is
// a list of blocks so media can accompany the text.
type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

// anthropicBlock is one content block: text or image.
type anthropicBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

// anthropicSource locates image content by URL.
type anthropicSource struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// anthropicResponse is the response body from the Messages API.
type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

// anthropicContent is a content block in the response.
type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Invoke sends one Messages API request and returns the first text
// block of the response.
func (a *Anthropic) Invoke(ctx context.Context, req Request) (string, error) {
	blocks := make([]anthropicBlock, 0, len(req.Media)+1)
	for _, m := range req.Media {
		blocks = append(blocks, anthropicBlock{
			Type:   "image",
			Source: &anthropicSource{Type: "url", URL: m.URL},
		})
	}
	blocks = append(blocks, anthropicBlock{Type: "text", Text: req.User})

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	body := anthropicRequest{
		Model:       req.Model,
		MaxTokens:   maxTokens,
		System:      req.System,
		Temperature: req.Temperature,
		Messages: []anthropicMessage{
			{Role: "user", Content: blocks},
		},
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, httpReq, 0)
	if err != nil {
		return "", fmt.Errorf("calling Anthropic API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Anthropic API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var aResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&aResp); err != nil {
		return "", fmt.Errorf("decoding Anthropic response: %w", err)
	}

	for _, block := range aResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("no text content in Anthropic response")
}
