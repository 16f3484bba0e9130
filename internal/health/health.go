// Package health provides liveness and readiness endpoints.
//
// /healthz answers 200 whenever the process is serving. /readyz answers 200
// only once the transports are up and every provider credential the
// pipeline needs is configured; a deployment missing a key stays live but
// not ready, so the orchestrator keeps traffic away from it.
package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
)

// ErrNotStarted is reported by Ready before SetReady(true).
var ErrNotStarted = errors.New("not started")

// Checker reports a reason the service cannot handle requests, or nil.
type Checker func() error

// Health tracks readiness.
type Health struct {
	version string
	ready   atomic.Bool
	check   Checker
}

// New creates a Health. check may be nil.
func New(version string, check Checker) *Health {
	return &Health{version: version, check: check}
}

// SetReady marks the transports as started (or stopping).
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Ready returns nil when the service can handle requests.
func (h *Health) Ready() error {
	if !h.ready.Load() {
		return ErrNotStarted
	}
	if h.check != nil {
		return h.check()
	}
	return nil
}

// Register mounts GET /healthz and GET /readyz on r.
func (h *Health) Register(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := h.Ready(); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready", "reason": err.Error()})
			return
		}
		writeStatus(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
