package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/voicechat/internal/config"
	"github.com/nadzzz/voicechat/internal/upstream"
)

var fakeMP3 = []byte{0x49, 0x44, 0x33, 0x04, 0x00, 0xff, 0xfb}

func newTestSynthesizer(url string) *Synthesizer {
	return New(config.ElevenLabsConfig{
		APIKey:          "xi-test",
		VoiceID:         "voice-1",
		ModelID:         "eleven_monolingual_v1",
		BaseURL:         url,
		Stability:       0.5,
		SimilarityBoost: 0.75,
	}, http.DefaultClient)
}

func TestSynthesize_RequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/text-to-speech/voice-1", r.URL.Path)
		assert.Equal(t, "xi-test", r.Header.Get("xi-api-key"))
		assert.Equal(t, "audio/mpeg", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body speechRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			assert.Equal(t, "Hi there!", body.Text)
			assert.Equal(t, "eleven_monolingual_v1", body.ModelID)
			assert.InDelta(t, 0.5, body.VoiceSettings.Stability, 1e-9)
			assert.InDelta(t, 0.75, body.VoiceSettings.SimilarityBoost, 1e-9)
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(fakeMP3)
	}))
	defer srv.Close()

	res, err := newTestSynthesizer(srv.URL).Synthesize(context.Background(), "Hi there!")
	require.NoError(t, err)
	assert.Equal(t, fakeMP3, res.Audio)
	assert.Equal(t, "audio/mpeg", res.ContentType)
}

func TestSynthesize_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":{"status":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	_, err := newTestSynthesizer(srv.URL).Synthesize(context.Background(), "Hi")

	var upErr *upstream.Error
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusUnauthorized, upErr.StatusCode)
	assert.Equal(t, `ElevenLabs API error: 401 - {"detail":{"status":"invalid_api_key"}}`, upErr.Error())
}

func TestSynthesize_EmptyText(t *testing.T) {
	_, err := newTestSynthesizer("http://unused.invalid").Synthesize(context.Background(), "")
	assert.Error(t, err)
}

func TestSynthesize_EmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	res, err := newTestSynthesizer(srv.URL).Synthesize(context.Background(), "Hi")
	assert.ErrorIs(t, err, ErrEmptyAudio)
	assert.Nil(t, res)
}

func TestSynthesize_AudioTooLarge(t *testing.T) {
	prev := maxAudio
	maxAudio = int64(len(fakeMP3) - 1)
	t.Cleanup(func() { maxAudio = prev })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(fakeMP3)
	}))
	defer srv.Close()

	res, err := newTestSynthesizer(srv.URL).Synthesize(context.Background(), "Hi")
	assert.ErrorIs(t, err, ErrAudioTooLarge)
	assert.Nil(t, res)
}

func TestSynthesize_AudioAtLimit(t *testing.T) {
	prev := maxAudio
	maxAudio = int64(len(fakeMP3))
	t.Cleanup(func() { maxAudio = prev })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(fakeMP3)
	}))
	defer srv.Close()

	res, err := newTestSynthesizer(srv.URL).Synthesize(context.Background(), "Hi")
	require.NoError(t, err)
	assert.Equal(t, fakeMP3, res.Audio)
}
