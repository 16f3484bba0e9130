// Package http implements the HTTP transport for voicechat.
//
// It serves the chatbot route, health probes, Prometheus metrics and the
// Swagger UI. The chatbot handler is also exported on its own for the
// serverless entry point, which has no router in front of it.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/nadzzz/voicechat/docs" // registers the OpenAPI document
	"github.com/nadzzz/voicechat/internal/config"
	"github.com/nadzzz/voicechat/internal/health"
	"github.com/nadzzz/voicechat/internal/message"
	"github.com/nadzzz/voicechat/internal/metrics"
	"github.com/nadzzz/voicechat/internal/transport"
	"github.com/nadzzz/voicechat/internal/upstream"
)

// ChatbotPath is the route of the chatbot endpoint.
const ChatbotPath = "/api/chatbot"

// maxBodyBytes bounds the request body (base64 audio included).
var maxBodyBytes int64 = 25 << 20

// Caller-facing messages for the non-validation failure classes.
const (
	msgMethodNotAllowed = "Method Not Allowed"
	msgTooLarge         = "Request body too large."
	msgInternal         = "An unexpected error occurred in the chatbot function."
)

// Options configures the HTTP transport.
type Options struct {
	Port      int
	InputMode message.InputMode
	CORS      config.CORSConfig

	// Credentials is consulted before every pipeline run; a non-nil error
	// is returned to the caller as a 500 configuration error.
	Credentials func() error

	// Health, when set, mounts /healthz and /readyz.
	Health *health.Health

	// Metrics, when set, records requests and mounts MetricsPath.
	Metrics     *metrics.Metrics
	MetricsPath string
}

// Transport implements transport.Transport over HTTP.
type Transport struct {
	opts   Options
	server *http.Server
}

// New creates a new HTTP transport.
func New(opts Options) *Transport {
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	return &Transport{opts: opts}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Router builds the full route tree around handler.
func (t *Transport) Router(handler transport.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(slog.Default()))
	r.Use(RecoverMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})

	r.Handle(ChatbotPath, t.chatbot(handler))

	if t.opts.Health != nil {
		t.opts.Health.Register(r)
	}
	if t.opts.Metrics != nil {
		r.Method(http.MethodGet, t.opts.MetricsPath, t.opts.Metrics.Handler())
	}

	// Swagger UI, backed by the document registered in package docs.
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}

// Serverless wraps the chatbot handler with the request-scoped middleware
// only, for platforms that route a single function per path.
func (t *Transport) Serverless(handler transport.Handler) http.Handler {
	return RequestIDMiddleware(
		LoggingMiddleware(slog.Default())(
			RecoverMiddleware(t.chatbot(handler)),
		),
	)
}

// Listen starts the HTTP server and routes chatbot requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.opts.Port),
		Handler:           t.Router(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.opts.Port, "input_mode", t.opts.InputMode)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

func (t *Transport) chatbot(handler transport.Handler) http.Handler {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.handleChatbot(w, r, handler)
	})
	if !t.opts.CORS.Enabled {
		return h
	}
	return corsMiddleware(t.opts.CORS)(h)
}

// corsMiddleware answers browser preflights for the chatbot route. Preflight
// requests pass through so the handler's OPTIONS branch writes the 200.
func corsMiddleware(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origin := cfg.AllowOrigin
	if origin == "" {
		origin = "*"
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:     []string{origin},
		AllowedMethods:     []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Content-Type"},
		OptionsPassthrough: true,
	})
}

// handleChatbot processes a chatbot request.
//
// @Summary     Chat with the voice bot
// @Description Accepts {"text": "..."} or {"audio": "<base64>"} depending on the deployment's input mode.
// @Description The input is (transcribed and) answered by the LLM, and the answer is synthesized to speech.
// @Tags        chatbot
// @Accept      json
// @Produce     json
// @Param       request  body      message.Request    true  "Chat request"
// @Success     200      {object}  message.Reply      "Reply text and base64 MPEG audio"
// @Failure     400      {object}  message.ErrorBody  "Missing or malformed input"
// @Failure     405      {object}  message.ErrorBody  "Method not allowed"
// @Failure     413      {object}  message.ErrorBody  "Request body too large"
// @Failure     500      {object}  message.ErrorBody  "Configuration or internal error"
// @Router      /api/chatbot [post]
func (t *Transport) handleChatbot(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	status := t.serveChatbot(w, r, handler)
	t.opts.Metrics.ObserveRequest(string(t.opts.InputMode), status)
}

func (t *Transport) serveChatbot(w http.ResponseWriter, r *http.Request, handler transport.Handler) int {
	ctx := r.Context()
	logger := slog.With("request_id", transport.RequestID(ctx))

	switch r.Method {
	case http.MethodPost:
	case http.MethodOptions:
		if t.opts.CORS.Enabled {
			w.WriteHeader(http.StatusOK)
			return http.StatusOK
		}
		fallthrough
	default:
		w.Header().Set("Allow", allowHeader(t.opts.CORS.Enabled))
		return writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}

	var req message.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("request body too large", "limit", tooLarge.Limit)
			return writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
		}
		logger.Debug("invalid request body", "error", err)
		return writeError(w, http.StatusBadRequest, message.ErrInvalidJSON.Error())
	}

	payload, err := message.ParseRequest(req, t.opts.InputMode)
	if err != nil {
		return writeError(w, http.StatusBadRequest, err.Error())
	}

	if t.opts.Credentials != nil {
		if err := t.opts.Credentials(); err != nil {
			logger.Error("missing provider credentials", "error", err)
			return writeError(w, http.StatusInternalServerError, err.Error())
		}
	}

	reply, err := handler(ctx, payload)
	if err != nil {
		var upErr *upstream.Error
		if errors.As(err, &upErr) {
			return writeError(w, forwardStatus(upErr.StatusCode), upErr.Message)
		}
		logger.Error("chatbot pipeline failed", "error", err)
		return writeError(w, http.StatusInternalServerError, msgInternal)
	}

	return writeJSON(w, http.StatusOK, reply)
}

// forwardStatus passes provider error statuses through; anything that is
// not a 4xx/5xx cannot be relayed as a failure and becomes 502.
func forwardStatus(code int) int {
	if code >= 400 && code <= 599 {
		return code
	}
	return http.StatusBadGateway
}

func allowHeader(cors bool) string {
	if cors {
		return "POST, OPTIONS"
	}
	return http.MethodPost
}

func writeJSON(w http.ResponseWriter, status int, body any) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
	return status
}

func writeError(w http.ResponseWriter, status int, msg string) int {
	return writeJSON(w, status, message.ErrorBody{Error: msg})
}
