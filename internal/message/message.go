// Package message defines the data types flowing through the voicechat pipeline.
package message

import (
	"encoding/base64"
	"errors"
	"strings"
)

// InputMode selects which request field a deployment accepts.
// The two modes are mutually exclusive; a deployment never negotiates
// between them per request.
type InputMode string

const (
	// InputModeText accepts {"text": "..."} and skips transcription.
	InputModeText InputMode = "text"

	// InputModeAudio accepts {"audio": "<base64>"} and transcribes it first.
	InputModeAudio InputMode = "audio"
)

// Valid reports whether m is a known input mode.
func (m InputMode) Valid() bool {
	return m == InputModeText || m == InputModeAudio
}

// Canned replies used when an upstream succeeds but returns nothing usable.
const (
	FallbackTranscript = "I could not understand your audio. Please try again."
	FallbackReply      = "I could not generate a response."
)

// Validation failures surfaced to the caller as 400 Bad Request.
var (
	ErrInvalidJSON  = errors.New("Invalid JSON body.")
	ErrNoText       = errors.New("No text provided.")
	ErrNoAudio      = errors.New("No audio provided.")
	ErrInvalidAudio = errors.New("Invalid audio encoding.")
)

// Request is the JSON body posted by the browser client.
type Request struct {
	// Text is the user's utterance (text mode).
	Text string `json:"text,omitempty" example:"Hello"`

	// Audio is base64-encoded recorded audio, usually audio/webm (audio mode).
	// A data URL prefix ("data:audio/webm;base64,") is tolerated.
	Audio string `json:"audio,omitempty"`
}

// Kind tags which variant a Payload holds.
type Kind int

const (
	KindText Kind = iota + 1
	KindAudio
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// Payload is the validated input of one invocation: either text or decoded
// audio bytes, never both.
type Payload struct {
	Kind  Kind
	Text  string
	Audio []byte
}

// TextPayload wraps user text.
func TextPayload(text string) Payload {
	return Payload{Kind: KindText, Text: text}
}

// AudioPayload wraps decoded audio bytes.
func AudioPayload(audio []byte) Payload {
	return Payload{Kind: KindAudio, Audio: audio}
}

// ParseRequest resolves a decoded request into a Payload for the given mode.
// It returns one of the validation errors above when the expected field is
// missing or malformed.
func ParseRequest(req Request, mode InputMode) (Payload, error) {
	if mode == InputModeAudio {
		if strings.TrimSpace(req.Audio) == "" {
			return Payload{}, ErrNoAudio
		}
		audio, err := DecodeAudio(req.Audio)
		if err != nil {
			return Payload{}, ErrInvalidAudio
		}
		if len(audio) == 0 {
			return Payload{}, ErrNoAudio
		}
		return AudioPayload(audio), nil
	}

	if req.Text == "" {
		return Payload{}, ErrNoText
	}
	return TextPayload(req.Text), nil
}

// DecodeAudio decodes standard base64, stripping an optional data URL prefix.
func DecodeAudio(encoded string) ([]byte, error) {
	s := strings.TrimSpace(encoded)
	if strings.HasPrefix(s, "data:") {
		if idx := strings.Index(s, ","); idx >= 0 {
			s = s[idx+1:]
		}
	}
	return base64.StdEncoding.DecodeString(s)
}

// Reply is the success body returned to the caller.
type Reply struct {
	// Text is the bot reply in text mode, or the transcript in audio mode.
	Text string `json:"text"`

	// BotResponse is the bot reply in audio mode.
	BotResponse string `json:"botResponse,omitempty"`

	// AudioBase64 is the synthesized speech, base64-encoded.
	AudioBase64 string `json:"audioBase64,omitempty"`

	// ContentType is the MIME type of AudioBase64 (e.g. "audio/mpeg").
	ContentType string `json:"contentType,omitempty"`
}

// SetAudio base64-encodes raw audio bytes into AudioBase64.
func (r *Reply) SetAudio(audio []byte, contentType string) {
	if len(audio) > 0 {
		r.AudioBase64 = base64.StdEncoding.EncodeToString(audio)
		r.ContentType = contentType
	}
}

// ErrorBody is the failure body returned to the caller.
type ErrorBody struct {
	Error string `json:"error" example:"No text provided."`
}
