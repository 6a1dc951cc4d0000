package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
)

const chatResponse = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{
    "index": 0,
    "message": {"role": "assistant", "content": "Ada [SRC1]"},
    "finish_reason": "stop"
  }],
  "usage": {"prompt_tokens": 10, "completion_tokens": 3, "total_tokens": 13}
}`

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	assert.Error(t, err)
}

func TestLLMService_Complete(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse))
	}))
	defer server.Close()

	s, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := s.Complete(context.Background(), "Tu es RecruitBot.", "CANDIDATS:\n[SRC1] Ada",
		driven.CompleteOptions{MaxTokens: 200})

	require.NoError(t, err)
	assert.Equal(t, "Ada [SRC1]", text)
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.Equal(t, float64(200), body["max_tokens"])

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestLLMService_Complete_NoRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	s, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = s.Complete(context.Background(), "s", "h", driven.CompleteOptions{})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
