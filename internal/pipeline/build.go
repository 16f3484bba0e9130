package pipeline

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nadzzz/voicechat/internal/config"
	"github.com/nadzzz/voicechat/internal/llm"
	geminillm "github.com/nadzzz/voicechat/internal/llm/gemini"
	openaillm "github.com/nadzzz/voicechat/internal/llm/openai"
	"github.com/nadzzz/voicechat/internal/message"
	"github.com/nadzzz/voicechat/internal/metrics"
	"github.com/nadzzz/voicechat/internal/stt"
	openaistt "github.com/nadzzz/voicechat/internal/stt/openai"
	"github.com/nadzzz/voicechat/internal/tts/elevenlabs"
)

// FromConfig wires the providers selected by cfg. The transcriber is only
// built in audio input mode. Providers are constructed even when their
// credentials are missing; CheckCredentials guards each request instead.
func FromConfig(cfg *config.Config, client *http.Client, m *metrics.Metrics) (*Pipeline, error) {
	var transcriber stt.Transcriber
	if cfg.Pipeline.InputMode == message.InputModeAudio {
		transcriber = openaistt.New(cfg.STT.OpenAI, client)
		slog.Info("using OpenAI Whisper transcriber", "model", cfg.STT.OpenAI.Model)
	}

	opts := llm.OptionsFromConfig(cfg.LLM)

	var responder llm.Responder
	switch cfg.LLM.Backend {
	case "gemini":
		responder = geminillm.New(cfg.LLM.Gemini, opts, client)
		slog.Info("using Gemini responder", "model", cfg.LLM.Gemini.Model)
	case "openai":
		responder = openaillm.New(cfg.LLM.OpenAI, opts, client)
		slog.Info("using OpenAI responder", "model", cfg.LLM.OpenAI.Model)
	default:
		return nil, fmt.Errorf("unknown llm backend %q", cfg.LLM.Backend)
	}

	synthesizer := elevenlabs.New(cfg.TTS.ElevenLabs, client)
	slog.Info("using ElevenLabs synthesizer", "model", cfg.TTS.ElevenLabs.ModelID)

	return New(transcriber, responder, synthesizer, m), nil
}
