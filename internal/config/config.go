// Package config handles loading and validating the voicechat configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nadzzz/voicechat/internal/message"
)

// Config is the root configuration for the voicechat server.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Upstream   UpstreamConfig   `mapstructure:"upstream"`
	STT        STTConfig        `mapstructure:"stt"`
	LLM        LLMConfig        `mapstructure:"llm"`
	TTS        TTSConfig        `mapstructure:"tts"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds process-level settings.
type ServerConfig struct {
	Name string `mapstructure:"name"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
	GRPC GRPCConfig `mapstructure:"grpc"`
}

// HTTPConfig configures the HTTP transport serving the chatbot route.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// GRPCConfig configures the gRPC health transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// PipelineConfig selects the accepted input shape.
type PipelineConfig struct {
	InputMode message.InputMode `mapstructure:"input_mode"` // "text" or "audio"
}

// UpstreamConfig holds settings shared by all provider clients.
type UpstreamConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// STTConfig configures speech-to-text.
type STTConfig struct {
	OpenAI WhisperConfig `mapstructure:"openai"`
}

// WhisperConfig holds OpenAI transcription settings.
type WhisperConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
}

// LLMConfig selects and configures the conversational backend.
type LLMConfig struct {
	Backend      string       `mapstructure:"backend"` // "gemini" or "openai"
	SystemPrompt string       `mapstructure:"system_prompt"`
	MaxTokens    int          `mapstructure:"max_tokens"`
	Temperature  float64      `mapstructure:"temperature"`
	Gemini       GeminiConfig `mapstructure:"gemini"`
	OpenAI       OpenAIConfig `mapstructure:"openai"`
}

// GeminiConfig holds Google Gemini settings.
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// OpenAIConfig holds OpenAI chat completions settings.
type OpenAIConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
}

// TTSConfig configures text-to-speech.
type TTSConfig struct {
	ElevenLabs ElevenLabsConfig `mapstructure:"elevenlabs"`
}

// ElevenLabsConfig holds ElevenLabs settings.
type ElevenLabsConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	VoiceID         string  `mapstructure:"voice_id"`
	ModelID         string  `mapstructure:"model_id"`
	BaseURL         string  `mapstructure:"base_url"`
	Stability       float64 `mapstructure:"stability"`
	SimilarityBoost float64 `mapstructure:"similarity_boost"`
}

// CORSConfig controls the cross-origin headers on the chatbot route.
type CORSConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	AllowOrigin string `mapstructure:"allow_origin"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// TelemetryConfig toggles OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// DefaultSystemPrompt establishes the chatbot persona.
const DefaultSystemPrompt = "You are a friendly, helpful voice assistant. Keep replies short and conversational."

// legacyEnv maps config keys to the bare variable names used by the
// serverless deployment. They are consulted after VOICECHAT_*.
var legacyEnv = map[string]string{
	"llm.gemini.api_key":      "GEMINI_API_KEY",
	"llm.openai.api_key":      "OPENAI_API_KEY",
	"stt.openai.api_key":      "OPENAI_API_KEY",
	"tts.elevenlabs.api_key":  "ELEVENLABS_API_KEY",
	"tts.elevenlabs.voice_id": "ELEVENLABS_VOICE_ID",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "voicechat")
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("pipeline.input_mode", string(message.InputModeText))
	v.SetDefault("upstream.timeout", 60*time.Second)
	v.SetDefault("stt.openai.api_key", "")
	v.SetDefault("stt.openai.model", "whisper-1")
	v.SetDefault("stt.openai.endpoint", "https://api.openai.com/v1/audio/transcriptions")
	v.SetDefault("llm.backend", "gemini")
	v.SetDefault("llm.system_prompt", DefaultSystemPrompt)
	v.SetDefault("llm.max_tokens", 150)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", "gemini-pro")
	v.SetDefault("llm.gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", "gpt-3.5-turbo")
	v.SetDefault("llm.openai.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("tts.elevenlabs.api_key", "")
	v.SetDefault("tts.elevenlabs.voice_id", "")
	v.SetDefault("tts.elevenlabs.model_id", "eleven_monolingual_v1")
	v.SetDefault("tts.elevenlabs.base_url", "https://api.elevenlabs.io/v1")
	v.SetDefault("tts.elevenlabs.stability", 0.5)
	v.SetDefault("tts.elevenlabs.similarity_boost", 0.75)
	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allow_origin", "*")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./voicechat.yaml, ./configs/voicechat.yaml, /etc/voicechat/voicechat.yaml.
// A .env file in the working directory, if present, is loaded into the
// environment first without overriding variables that are already set.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("voicechat")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/voicechat")
	}

	// Environment variables: VOICECHAT_LLM_BACKEND, VOICECHAT_TTS_ELEVENLABS_VOICE_ID, etc.
	v.SetEnvPrefix("VOICECHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configFile != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.resolveSecrets()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveSecrets expands "${VAR}" references and falls back to the legacy
// bare variable names for any credential still empty.
func (c *Config) resolveSecrets() {
	fields := map[string]*string{
		"llm.gemini.api_key":      &c.LLM.Gemini.APIKey,
		"llm.openai.api_key":      &c.LLM.OpenAI.APIKey,
		"stt.openai.api_key":      &c.STT.OpenAI.APIKey,
		"tts.elevenlabs.api_key":  &c.TTS.ElevenLabs.APIKey,
		"tts.elevenlabs.voice_id": &c.TTS.ElevenLabs.VoiceID,
	}
	for key, field := range fields {
		*field = resolveEnvRef(*field)
		if *field == "" {
			*field = os.Getenv(legacyEnv[key])
		}
	}
}

// Validate rejects settings the server cannot start with. Missing
// credentials are not an error here: they are reported per request by
// CheckCredentials so the endpoint can answer with a configuration error.
func (c *Config) Validate() error {
	if !c.Pipeline.InputMode.Valid() {
		return fmt.Errorf("invalid pipeline.input_mode %q (want %q or %q)",
			c.Pipeline.InputMode, message.InputModeText, message.InputModeAudio)
	}
	switch c.LLM.Backend {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown llm.backend %q", c.LLM.Backend)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
