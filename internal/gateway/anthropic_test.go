// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// anthropicTestServer stands in for the Messages API and captures the
// last request body.
func anthropicTestServer(t *testing.T, status int, respBody string) (*httptest.Server, *anthropicRequest) {
	t.Helper()
	captured := &anthropicRequest{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.NotEmpty(t, r.Header.Get("x-api-key"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		w.WriteHeader(status)
		w.Write([]byte(respBody))
	}))
	return ts, captured
}

func withAnthropicURL(t *testing.T, url string) {
	t.Helper()
	old := anthropicAPIURL
	anthropicAPIURL = url
	t.Cleanup(func() { anthropicAPIURL = old })
}

func TestAnthropicInvoke_Success(t *testing.T) {
	ts, captured := anthropicTestServer(t, http.StatusOK,
		`{"content":[{"type":"text","text":"the answer"}]}`)
	defer ts.Close()
	withAnthropicURL(t, ts.URL)

	a := NewAnthropic("test-key")
	a.Client = ts.Client()

	text, err := a.Invoke(context.Background(), Request{
		System:      "you are a test",
		User:        "question?",
		Model:       "test-model",
		Temperature: 0.3,
		MaxTokens:   512,
	})
	require.NoError(t, err)
	assert.Equal(t, "the answer", text)

	assert.Equal(t, "test-model", captured.Model)
	assert.Equal(t, "you are a test", captured.System)
	assert.Equal(t, 512, captured.MaxTokens)
	require.Len(t, captured.Messages, 1)
	require.Len(t, captured.Messages[0].Content, 1)
	assert.Equal(t, "question?", captured.Messages[0].Content[0].Text)
}

func TestAnthropicInvoke_MediaBlocks(t *testing.T) {
	ts, captured := anthropicTestServer(t, http.StatusOK,
		`{"content":[{"type":"text","text":"ok"}]}`)
	defer ts.Close()
	withAnthropicURL(t, ts.URL)

	a := NewAnthropic("test-key")
	a.Client = ts.Client()

	_, err := a.Invoke(context.Background(), Request{
		User:  "describe",
		Model: "test-model",
		Media: []MediaRef{{URL: "https://example.com/fig.png", MIMEType: "image/png"}},
	})
	require.NoError(t, err)

	require.Len(t, captured.Messages, 1)
	blocks := captured.Messages[0].Content
	require.Len(t, blocks, 2)
	assert.Equal(t, "image", blocks[0].Type)
	assert.Equal(t, "https://example.com/fig.png", blocks[0].Source.URL)
	assert.Equal(t, "text", blocks[1].Type)
}

func TestAnthropicInvoke_APIError(t *testing.T) {
	ts, _ := anthropicTestServer(t, http.StatusBadRequest,
		`{"error":{"type":"invalid_request_error"}}`)
	defer ts.Close()
	withAnthropicURL(t, ts.URL)

	a := NewAnthropic("test-key")
	a.Client = ts.Client()

	_, err := a.Invoke(context.Background(), Request{User: "q", Model: "m"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "400")
}

func TestAnthropicInvoke_NoTextContent(t *testing.T) {
	ts, _ := anthropicTestServer(t, http.StatusOK, `{"content":[]}`)
	defer ts.Close()
	withAnthropicURL(t, ts.URL)

	a := NewAnthropic("test-key")
	a.Client = ts.Client()

	_, err := a.Invoke(context.Background(), Request{User: "q", Model: "m"})
	assert.ErrorContains(t, err, "no text content")
}
