// Package pipeline implements the chatbot request pipeline.
//
// One invocation runs up to three provider calls strictly in order:
// transcribe (audio input only), reply, synthesize. The first hard failure
// ends the invocation; an empty transcript or an empty reply degrades to a
// canned answer instead.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nadzzz/voicechat/internal/llm"
	"github.com/nadzzz/voicechat/internal/message"
	"github.com/nadzzz/voicechat/internal/metrics"
	"github.com/nadzzz/voicechat/internal/stt"
	"github.com/nadzzz/voicechat/internal/transport"
	"github.com/nadzzz/voicechat/internal/tts"
	"github.com/nadzzz/voicechat/internal/upstream"
)

const tracerName = "github.com/nadzzz/voicechat/internal/pipeline"

// Pipeline chains the three providers.
type Pipeline struct {
	transcriber stt.Transcriber // nil in text input mode
	responder   llm.Responder
	synthesizer tts.Synthesizer
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

// New creates a Pipeline. transcriber may be nil when the deployment only
// accepts text; m may be nil to disable metrics.
func New(transcriber stt.Transcriber, responder llm.Responder, synthesizer tts.Synthesizer, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		transcriber: transcriber,
		responder:   responder,
		synthesizer: synthesizer,
		metrics:     m,
		tracer:      otel.Tracer(tracerName),
	}
}

// Run processes a single payload through the full pipeline. Provider
// failures are returned wrapped around *upstream.Error.
func (p *Pipeline) Run(ctx context.Context, payload message.Payload) (*message.Reply, error) {
	start := time.Now()
	logger := slog.With("request_id", transport.RequestID(ctx), "input", payload.Kind.String())

	// Step A: transcribe audio.
	var userText, transcript string
	switch payload.Kind {
	case message.KindAudio:
		if p.transcriber == nil {
			return nil, errors.New("audio input received but no transcriber is configured")
		}
		logger.Debug("transcribing audio", "bytes", len(payload.Audio))
		err := p.step(ctx, "stt", p.transcriber.Name(), func(ctx context.Context) error {
			var err error
			transcript, err = p.transcriber.Transcribe(ctx, payload.Audio)
			return err
		})
		if err != nil {
			logger.Error("transcription failed", "error", err)
			return nil, fmt.Errorf("transcribing audio: %w", err)
		}
		if strings.TrimSpace(transcript) == "" {
			logger.Warn("empty transcript, returning fallback reply")
			p.metrics.Fallback("empty_transcript")
			return &message.Reply{Text: "", BotResponse: message.FallbackTranscript}, nil
		}
		logger.Info("transcription complete", "text_length", len(transcript))
		userText = transcript

	case message.KindText:
		userText = payload.Text

	default:
		return nil, fmt.Errorf("unsupported payload kind %d", payload.Kind)
	}

	// Step B: conversational reply.
	var reply string
	err := p.step(ctx, "llm", p.responder.Name(), func(ctx context.Context) error {
		var err error
		reply, err = p.responder.Reply(ctx, userText)
		return err
	})
	if err != nil {
		logger.Error("reply generation failed", "error", err)
		return nil, fmt.Errorf("generating reply: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		logger.Warn("empty reply, substituting fallback")
		p.metrics.Fallback("empty_reply")
		reply = message.FallbackReply
	}
	logger.Info("reply generated", "text_length", len(reply))

	// Step C: speak the reply.
	var speech *tts.Result
	err = p.step(ctx, "tts", p.synthesizer.Name(), func(ctx context.Context) error {
		var err error
		speech, err = p.synthesizer.Synthesize(ctx, reply)
		return err
	})
	if err != nil {
		logger.Error("speech synthesis failed", "error", err)
		return nil, fmt.Errorf("synthesizing speech: %w", err)
	}

	result := &message.Reply{Text: reply}
	if payload.Kind == message.KindAudio {
		result.Text = transcript
		result.BotResponse = reply
	}
	result.SetAudio(speech.Audio, speech.ContentType)

	logger.Info("pipeline complete", "duration", time.Since(start), "audio_bytes", len(speech.Audio))
	return result, nil
}

// step runs fn inside a span and records its latency and any provider error.
func (p *Pipeline) step(ctx context.Context, name, provider string, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "pipeline."+name,
		trace.WithAttributes(attribute.String("provider", provider)))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	p.metrics.ObserveStep(name, provider, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var upErr *upstream.Error
		if errors.As(err, &upErr) {
			span.SetAttributes(attribute.Int("upstream.status", upErr.StatusCode))
			p.metrics.UpstreamError(upErr.Provider, upErr.StatusCode)
		}
	}
	return err
}
