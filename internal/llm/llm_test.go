package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageJSON(text string) map[string]any {
	content := []map[string]any{}
	if text != "" {
		content = append(content, map[string]any{"type": "text", "text": text})
	}
	return map[string]any{
		"id":          "msg_test_001",
		"type":        "message",
		"role":        "assistant",
		"content":     content,
		"model":       defaultAnthropicModel,
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
	}
}

func TestAnthropicComplete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, defaultAnthropicModel, body.Model)
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "user", body.Messages[0].Role)
		assert.Equal(t, "プロンプト", body.Messages[0].Content[0].Text)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageJSON("ジャンル：文学\n"))
	}))
	defer ts.Close()

	oracle, err := New(Config{Provider: "anthropic", APIKey: "test-key", BaseURL: ts.URL})
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, oracle.Name())

	text, err := oracle.Complete(context.Background(), "プロンプト")
	require.NoError(t, err)
	assert.Equal(t, "ジャンル：文学", text)
}

func TestAnthropicEmptyAndErrors(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(int(status.Load()))
		if status.Load() != http.StatusOK {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"type":  "error",
				"error": map[string]any{"type": "api_error", "message": "Internal server error"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(messageJSON(""))
	}))
	defer ts.Close()

	oracle := NewAnthropic(Config{APIKey: "test-key", BaseURL: ts.URL})

	_, err := oracle.Complete(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrEmptyResponse))

	status.Store(http.StatusInternalServerError)
	_, err = oracle.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic: create message")
}

func TestGeminiComplete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "プロンプト", req.Contents[0].Parts[0].Text)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"季節："},{"text":"夏"}]},"finishReason":"STOP"}]}`))
	}))
	defer ts.Close()

	oracle, err := New(Config{Provider: "Gemini", APIKey: "g-key", BaseURL: ts.URL, Model: "claude-haiku-4-5-20251001"})
	require.NoError(t, err)

	text, err := oracle.Complete(context.Background(), "プロンプト")
	require.NoError(t, err)
	assert.Equal(t, "季節：夏", text)
}

func TestGeminiNoCandidates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer ts.Close()

	_, err := NewGemini(Config{APIKey: "k", BaseURL: ts.URL}).Complete(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{Provider: "anthropic"})
	require.Error(t, err)

	_, err = New(Config{Provider: "openai", APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}
