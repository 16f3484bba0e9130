// Package elevenlabs implements tts.Synthesizer using the ElevenLabs
// text-to-speech REST API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/nadzzz/voicechat/internal/config"
	"github.com/nadzzz/voicechat/internal/tts"
	"github.com/nadzzz/voicechat/internal/upstream"
)

const (
	providerName = "ElevenLabs"
	audioMPEG    = "audio/mpeg"
)

// maxAudio bounds the accepted synthesis result.
var maxAudio int64 = 32 << 20

var (
	// ErrEmptyAudio is returned when a successful response carries no audio.
	ErrEmptyAudio = errors.New("elevenlabs returned no audio")

	// ErrAudioTooLarge is returned when the audio exceeds maxAudio.
	ErrAudioTooLarge = errors.New("elevenlabs audio exceeds size limit")
)

// Synthesizer posts reply text to /text-to-speech/{voice_id}.
type Synthesizer struct {
	apiKey          string
	voiceID         string
	modelID         string
	baseURL         string
	stability       float64
	similarityBoost float64
	client          *http.Client
}

// New creates a new ElevenLabs synthesizer from config.
func New(cfg config.ElevenLabsConfig, client *http.Client) *Synthesizer {
	return &Synthesizer{
		apiKey:          cfg.APIKey,
		voiceID:         cfg.VoiceID,
		modelID:         cfg.ModelID,
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		stability:       cfg.Stability,
		similarityBoost: cfg.SimilarityBoost,
		client:          client,
	}
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "elevenlabs" }

// Synthesize requests MPEG audio for text with the configured voice.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*tts.Result, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}

	reqBody := speechRequest{
		Text:    text,
		ModelID: s.modelID,
		VoiceSettings: voiceSettings{
			Stability:       s.stability,
			SimilarityBoost: s.similarityBoost,
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshalling speech request: %w", err)
	}

	endpoint := s.baseURL + "/text-to-speech/" + url.PathEscape(s.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating speech request: %w", err)
	}
	req.Header.Set("Accept", audioMPEG)
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("elevenlabs synthesize", "text_length", len(text), "voice", s.voiceID, "model", s.modelID)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if !upstream.OK(resp.StatusCode) {
		upErr := upstream.NewStatusError(providerName, resp.StatusCode, upstream.ReadBody(resp))
		slog.Error("elevenlabs API error", "status", resp.StatusCode, "body", upErr.Body)
		return nil, upErr
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudio+1))
	if err != nil {
		return nil, fmt.Errorf("reading speech audio: %w", err)
	}
	if int64(len(audio)) > maxAudio {
		return nil, fmt.Errorf("%w (%d bytes)", ErrAudioTooLarge, maxAudio)
	}
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = audioMPEG
	}

	slog.Debug("elevenlabs audio generated", "audio_bytes", len(audio))
	return &tts.Result{
		Audio:       audio,
		ContentType: contentType,
	}, nil
}

// --- Wire types ---

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}
