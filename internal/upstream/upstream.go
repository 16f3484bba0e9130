// Package upstream holds what the provider clients share: an instrumented
// HTTP client and the error type that carries a provider's failure status
// back to the caller unchanged.
package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxErrorBody bounds how much of a failing response body is forwarded.
const maxErrorBody = 64 << 10

// Error is a non-success response from a provider. The HTTP layer forwards
// StatusCode as the response status and Message as the error text.
type Error struct {
	// Provider is the display name used in messages (e.g. "Gemini", "ElevenLabs").
	Provider string

	// StatusCode is the provider's HTTP status.
	StatusCode int

	// Body is the provider's (possibly truncated) response body.
	Body string

	// Message is the caller-facing error text.
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewError builds an Error whose message embeds the provider body:
// "<Provider> API error: <body>". JSON bodies are compacted.
func NewError(provider string, status int, body []byte) *Error {
	b := compact(body)
	return &Error{
		Provider:   provider,
		StatusCode: status,
		Body:       b,
		Message:    fmt.Sprintf("%s API error: %s", provider, b),
	}
}

// NewStatusError builds an Error whose message also carries the status:
// "<Provider> API error: <status> - <body>".
func NewStatusError(provider string, status int, body []byte) *Error {
	e := NewError(provider, status, body)
	e.Message = fmt.Sprintf("%s API error: %d - %s", provider, status, e.Body)
	return e
}

// ReadBody drains up to maxErrorBody bytes of a failing response.
func ReadBody(resp *http.Response) []byte {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return body
}

// OK reports whether status is a 2xx code.
func OK(status int) bool {
	return status >= 200 && status < 300
}

// NewClient returns an HTTP client for provider calls. Requests are traced
// through otelhttp; timeout bounds each call (zero means no client timeout).
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func compact(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if json.Valid(trimmed) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err == nil {
			return buf.String()
		}
	}
	return strings.TrimSpace(string(trimmed))
}
