// Package gemini implements llm.Responder using Google's Gemini
// generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/nadzzz/voicechat/internal/config"
	"github.com/nadzzz/voicechat/internal/llm"
	"github.com/nadzzz/voicechat/internal/upstream"
)

const (
	providerName = "Gemini"
	apiKeyHeader = "x-goog-api-key"
)

// Responder calls models/{model}:generateContent. The API key travels in
// the x-goog-api-key header so it never appears in URLs, logs or spans.
type Responder struct {
	apiKey  string
	model   string
	baseURL string
	opts    llm.Options
	client  *http.Client
}

// New creates a new Gemini responder from config.
func New(cfg config.GeminiConfig, opts llm.Options, client *http.Client) *Responder {
	return &Responder{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		opts:    opts,
		client:  client,
	}
}

// Name returns the backend identifier.
func (r *Responder) Name() string { return "gemini" }

// Reply sends the user text as a single user-role content and returns the
// first candidate's first text part.
func (r *Responder) Reply(ctx context.Context, text string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: text}}},
		},
		GenerationConfig: &generationConfig{
			MaxOutputTokens: r.opts.MaxTokens,
			Temperature:     r.opts.Temperature,
		},
	}
	if r.opts.SystemPrompt != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: r.opts.SystemPrompt}}}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if !upstream.OK(resp.StatusCode) {
		upErr := upstream.NewError(providerName, resp.StatusCode, upstream.ReadBody(resp))
		slog.Error("gemini API error", "status", resp.StatusCode, "body", upErr.Body)
		return "", upErr
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decoding gemini response: %w", err)
	}

	reply := genResp.firstText()
	slog.Debug("gemini reply", "text_length", len(reply), "candidates", len(genResp.Candidates))
	return reply, nil
}

func (r *Responder) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", r.baseURL, url.PathEscape(r.model))
}

// --- Wire types ---

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (g generateResponse) firstText() string {
	if len(g.Candidates) == 0 || len(g.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return g.Candidates[0].Content.Parts[0].Text
}
