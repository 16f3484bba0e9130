// Package llm defines the interface for conversational reply generation.
//
// voicechat ships with two backends: Gemini (generateContent) and OpenAI
// (chat completions). Both send a single user turn, optionally preceded by a
// fixed persona instruction, with a bounded output length.
package llm

import (
	"context"

	"github.com/nadzzz/voicechat/internal/config"
)

// Options are the generation parameters fixed per deployment.
type Options struct {
	// SystemPrompt establishes the chatbot persona. Empty disables it.
	SystemPrompt string

	// MaxTokens bounds the reply length.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64
}

// OptionsFromConfig extracts generation options from the LLM config.
func OptionsFromConfig(cfg config.LLMConfig) Options {
	return Options{
		SystemPrompt: cfg.SystemPrompt,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
	}
}

// Responder produces a chatbot reply for one user utterance.
type Responder interface {
	// Name returns the backend identifier (e.g., "gemini", "openai").
	Name() string

	// Reply returns the first candidate's text. An empty string means the
	// provider answered successfully but produced no text. A non-success
	// provider response is returned as *upstream.Error.
	Reply(ctx context.Context, text string) (string, error)
}
