// Package handler is the serverless entry point. Platforms that map
// api/<name>.go to a route call Handler for every request to /api/chatbot.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/nadzzz/voicechat/internal/config"
	"github.com/nadzzz/voicechat/internal/message"
	"github.com/nadzzz/voicechat/internal/pipeline"
	httptransport "github.com/nadzzz/voicechat/internal/transport/http"
	"github.com/nadzzz/voicechat/internal/upstream"
)

// build runs once per warm instance.
var build = sync.OnceValues(func() (http.Handler, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	config.SetupLogging(cfg.Logging)

	p, err := pipeline.FromConfig(cfg, upstream.NewClient(cfg.Upstream.Timeout), nil)
	if err != nil {
		return nil, err
	}

	t := httptransport.New(httptransport.Options{
		InputMode:   cfg.Pipeline.InputMode,
		CORS:        cfg.CORS,
		Credentials: cfg.CheckCredentials,
	})
	return t.Serverless(p.Run), nil
})

// Handler serves one chatbot request.
func Handler(w http.ResponseWriter, r *http.Request) {
	h, err := build()
	if err != nil {
		slog.Error("chatbot function not configured", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(message.ErrorBody{Error: "Server configuration error: " + err.Error()})
		return
	}
	h.ServeHTTP(w, r)
}
