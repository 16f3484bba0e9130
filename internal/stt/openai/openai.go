// Package openai implements stt.Transcriber using OpenAI's Audio
// Transcription API (Whisper).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/nadzzz/voicechat/internal/config"
	"github.com/nadzzz/voicechat/internal/upstream"
)

const (
	// providerName prefixes forwarded error messages.
	providerName = "OpenAI Whisper"

	// The browser recorder always produces WebM/Opus.
	uploadFilename    = "audio.webm"
	uploadContentType = "audio/webm"
)

// Transcriber sends recordings to the OpenAI transcription endpoint.
type Transcriber struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// New creates a new Whisper transcriber from config.
func New(cfg config.WhisperConfig, client *http.Client) *Transcriber {
	return &Transcriber{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: cfg.Endpoint,
		client:   client,
	}
}

// Name returns the backend identifier.
func (t *Transcriber) Name() string { return "openai" }

// Transcribe uploads audio as multipart/form-data and returns the transcript.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, uploadFilename))
	header.Set("Content-Type", uploadContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("writing audio: %w", err)
	}
	if err := writer.WriteField("model", t.model); err != nil {
		return "", fmt.Errorf("writing model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if !upstream.OK(resp.StatusCode) {
		upErr := upstream.NewError(providerName, resp.StatusCode, upstream.ReadBody(resp))
		slog.Error("whisper API error", "status", resp.StatusCode, "body", upErr.Body)
		return "", upErr
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding transcription: %w", err)
	}

	slog.Debug("transcription complete", "text_length", len(result.Text))
	return result.Text, nil
}
