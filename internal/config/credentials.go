package config

import "github.com/nadzzz/voicechat/internal/message"

// MissingCredentialError reports an upstream credential absent from the
// configuration. The chatbot endpoint maps it to 500 before any provider
// is contacted.
type MissingCredentialError struct {
	// Provider is the display name of the provider missing credentials.
	Provider string

	// Keys lists the config keys that are empty.
	Keys []string

	// Detail is the caller-facing message suffix, e.g. "Gemini API key missing."
	Detail string
}

func (e *MissingCredentialError) Error() string {
	return "Server configuration error: " + e.Detail
}

// CheckCredentials verifies that every provider the configured pipeline
// will call has its credentials. Checks run in pipeline order so the first
// reported gap is the first step that would have failed.
func (c *Config) CheckCredentials() error {
	if c.Pipeline.InputMode == message.InputModeAudio && c.STT.OpenAI.APIKey == "" {
		return &MissingCredentialError{
			Provider: "OpenAI Whisper",
			Keys:     []string{"stt.openai.api_key"},
			Detail:   "OpenAI API key missing.",
		}
	}

	switch c.LLM.Backend {
	case "openai":
		if c.LLM.OpenAI.APIKey == "" {
			return &MissingCredentialError{
				Provider: "OpenAI",
				Keys:     []string{"llm.openai.api_key"},
				Detail:   "OpenAI API key missing.",
			}
		}
	default:
		if c.LLM.Gemini.APIKey == "" {
			return &MissingCredentialError{
				Provider: "Gemini",
				Keys:     []string{"llm.gemini.api_key"},
				Detail:   "Gemini API key missing.",
			}
		}
	}

	var missing []string
	if c.TTS.ElevenLabs.APIKey == "" {
		missing = append(missing, "tts.elevenlabs.api_key")
	}
	if c.TTS.ElevenLabs.VoiceID == "" {
		missing = append(missing, "tts.elevenlabs.voice_id")
	}
	if len(missing) > 0 {
		return &MissingCredentialError{
			Provider: "ElevenLabs",
			Keys:     missing,
			Detail:   "ElevenLabs API key or Voice ID missing.",
		}
	}

	return nil
}
