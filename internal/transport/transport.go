// Package transport defines the interface for pluggable transports.
//
// The HTTP transport serves the chatbot route; the gRPC transport only
// exposes health. Both are started and stopped the same way by main.
package transport

import (
	"context"

	"github.com/nadzzz/voicechat/internal/message"
)

// Handler runs one validated payload through the pipeline.
type Handler func(ctx context.Context, payload message.Payload) (*message.Reply, error)

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "grpc").
	Name() string

	// Listen starts serving and blocks until the context is cancelled.
	Listen(ctx context.Context, handler Handler) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
