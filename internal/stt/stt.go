// Package stt defines the interface for speech-to-text transcription.
//
// In audio input mode the pipeline transcribes the caller's recording before
// asking the conversational backend for a reply.
package stt

import "context"

// Transcriber converts recorded audio to text.
type Transcriber interface {
	// Name returns the backend identifier (e.g., "openai").
	Name() string

	// Transcribe converts audio bytes to text. A non-success provider
	// response is returned as *upstream.Error.
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
