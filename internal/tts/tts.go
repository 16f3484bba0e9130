// Package tts defines the interface for text-to-speech synthesis.
//
// voicechat speaks every bot reply back to the caller. The synthesized audio
// is returned inline (base64) rather than as a URL, since nothing outlives
// the invocation that produced it.
package tts

import "context"

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Name returns the backend identifier (e.g., "elevenlabs").
	Name() string

	// Synthesize generates audio from the given text. A non-success
	// provider response is returned as *upstream.Error.
	Synthesize(ctx context.Context, text string) (*Result, error)
}

// Result holds the output of TTS synthesis.
type Result struct {
	// Audio is the encoded audio as returned by the provider.
	Audio []byte

	// ContentType is the MIME type of the audio (e.g., "audio/mpeg").
	ContentType string
}
