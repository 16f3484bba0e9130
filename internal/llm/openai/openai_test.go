package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/voicechat/internal/config"
	"github.com/nadzzz/voicechat/internal/llm"
	"github.com/nadzzz/voicechat/internal/upstream"
)

func newTestResponder(url string, opts llm.Options) *Responder {
	return New(config.OpenAIConfig{
		APIKey:   "sk-test",
		Model:    "gpt-3.5-turbo",
		Endpoint: url,
	}, opts, http.DefaultClient)
}

func TestReply_RequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body chatRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		assert.Equal(t, "gpt-3.5-turbo", body.Model)
		assert.Equal(t, 150, body.MaxTokens)
		assert.InDelta(t, 0.7, body.Temperature, 1e-9)
		assert.Equal(t, []chatMessage{
			{Role: "system", Content: "persona"},
			{Role: "user", Content: "Hello"},
		}, body.Messages)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hi there!"}}]}`))
	}))
	defer srv.Close()

	reply, err := newTestResponder(srv.URL, llm.Options{SystemPrompt: "persona", MaxTokens: 150, Temperature: 0.7}).
		Reply(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", reply)
}

func TestReply_UserOnlyWithoutPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body chatRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			assert.Len(t, body.Messages, 1)
			assert.Equal(t, "user", body.Messages[0].Role)
		}
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	reply, err := newTestResponder(srv.URL, llm.Options{MaxTokens: 5}).Reply(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestReply_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_exceeded"}}`))
	}))
	defer srv.Close()

	_, err := newTestResponder(srv.URL, llm.Options{MaxTokens: 5}).Reply(context.Background(), "Hello")

	var upErr *upstream.Error
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusTooManyRequests, upErr.StatusCode)
	assert.Contains(t, upErr.Error(), "OpenAI API error:")
	assert.Contains(t, upErr.Error(), "rate_limit_exceeded")
}
