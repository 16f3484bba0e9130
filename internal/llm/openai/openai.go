// Package openai implements llm.Responder using OpenAI's Chat Completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nadzzz/voicechat/internal/config"
	"github.com/nadzzz/voicechat/internal/llm"
	"github.com/nadzzz/voicechat/internal/upstream"
)

const providerName = "OpenAI"

// Responder uses the Chat Completions API for replies.
type Responder struct {
	apiKey   string
	model    string
	endpoint string
	opts     llm.Options
	client   *http.Client
}

// New creates a new OpenAI responder from config.
func New(cfg config.OpenAIConfig, opts llm.Options, client *http.Client) *Responder {
	return &Responder{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: cfg.Endpoint,
		opts:     opts,
		client:   client,
	}
}

// Name returns the backend identifier.
func (r *Responder) Name() string { return "openai" }

// Reply sends [system?, user] messages and returns the first choice's content.
func (r *Responder) Reply(ctx context.Context, text string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if r.opts.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: r.opts.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: text})

	reqBody := chatRequest{
		Model:       r.model,
		Messages:    messages,
		MaxTokens:   r.opts.MaxTokens,
		Temperature: r.opts.Temperature,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if !upstream.OK(resp.StatusCode) {
		upErr := upstream.NewError(providerName, resp.StatusCode, upstream.ReadBody(resp))
		slog.Error("openai chat API error", "status", resp.StatusCode, "body", upErr.Body)
		return "", upErr
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		slog.Debug("openai chat returned no choices")
		return "", nil
	}

	reply := chatResp.Choices[0].Message.Content
	slog.Debug("openai reply", "text_length", len(reply))
	return reply, nil
}

// --- Internal types ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
