// Voicechat is the backend of a browser voice chatbot. It accepts text or
// recorded audio, answers with an LLM, and returns the answer as speech.
//
// Usage:
//
//	voicechat [flags]
//	voicechat --config /path/to/voicechat.yaml
//
// @title       voicechat API
// @version     1.0
// @description Voice chatbot backend: speech-to-text, LLM reply, text-to-speech.
// @BasePath    /
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nadzzz/voicechat/internal/config"
	"github.com/nadzzz/voicechat/internal/health"
	"github.com/nadzzz/voicechat/internal/metrics"
	"github.com/nadzzz/voicechat/internal/pipeline"
	"github.com/nadzzz/voicechat/internal/telemetry"
	"github.com/nadzzz/voicechat/internal/transport"
	grpctransport "github.com/nadzzz/voicechat/internal/transport/grpc"
	httptransport "github.com/nadzzz/voicechat/internal/transport/http"
	"github.com/nadzzz/voicechat/internal/upstream"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/voicechat.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("voicechat %s\n", version)
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("voicechat starting", "version", version, "input_mode", cfg.Pipeline.InputMode)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(cfg.Server.Name, version)
		if err != nil {
			slog.Error("failed to initialise tracing", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Error("tracer shutdown error", "error", err)
			}
		}()
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Warn early; requests still get the configuration error per call.
	if err := cfg.CheckCredentials(); err != nil {
		slog.Warn("provider credentials incomplete", "error", err)
	}

	p, err := pipeline.FromConfig(cfg, upstream.NewClient(cfg.Upstream.Timeout), m)
	if err != nil {
		slog.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	hc := health.New(version, cfg.CheckCredentials)

	// Initialize enabled transports.
	var transports []transport.Transport

	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(httptransport.Options{
			Port:        cfg.Transports.HTTP.Port,
			InputMode:   cfg.Pipeline.InputMode,
			CORS:        cfg.CORS,
			Credentials: cfg.CheckCredentials,
			Health:      hc,
			Metrics:     m,
			MetricsPath: cfg.Metrics.Path,
		}))
	}
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port, hc))
	}

	if len(transports) == 0 {
		slog.Error("no transports enabled, enable at least one in config")
		os.Exit(1)
	}

	// Start all transports.
	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx, p.Run); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	// Mark as ready once all transports are started.
	hc.SetReady(true)
	slog.Info("voicechat ready", "transports", len(transports))

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")
	hc.SetReady(false)

	// Close all transports gracefully.
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("voicechat stopped")
}
