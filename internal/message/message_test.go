package message

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest_Text(t *testing.T) {
	p, err := ParseRequest(Request{Text: "Hello"}, InputModeText)
	require.NoError(t, err)
	assert.Equal(t, KindText, p.Kind)
	assert.Equal(t, "Hello", p.Text)
	assert.Nil(t, p.Audio)
}

func TestParseRequest_TextMissing(t *testing.T) {
	_, err := ParseRequest(Request{}, InputModeText)
	assert.ErrorIs(t, err, ErrNoText)

	// Audio is ignored in text mode.
	_, err = ParseRequest(Request{Audio: "aGVsbG8="}, InputModeText)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestParseRequest_Audio(t *testing.T) {
	raw := []byte{0x1a, 0x45, 0xdf, 0xa3}
	p, err := ParseRequest(Request{Audio: base64.StdEncoding.EncodeToString(raw)}, InputModeAudio)
	require.NoError(t, err)
	assert.Equal(t, KindAudio, p.Kind)
	assert.Equal(t, raw, p.Audio)
}

func TestParseRequest_AudioErrors(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want error
	}{
		{name: "missing", req: Request{}, want: ErrNoAudio},
		{name: "blank", req: Request{Audio: "   "}, want: ErrNoAudio},
		{name: "text only", req: Request{Text: "hi"}, want: ErrNoAudio},
		{name: "not base64", req: Request{Audio: "%%%"}, want: ErrInvalidAudio},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest(tt.req, InputModeAudio)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeAudio_DataURL(t *testing.T) {
	got, err := DecodeAudio("data:audio/webm;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestReply_SetAudio(t *testing.T) {
	var r Reply
	r.SetAudio(nil, "audio/mpeg")
	assert.Empty(t, r.AudioBase64)
	assert.Empty(t, r.ContentType)

	r.SetAudio([]byte("ID3"), "audio/mpeg")
	assert.Equal(t, "SUQz", r.AudioBase64)
	assert.Equal(t, "audio/mpeg", r.ContentType)
}

func TestInputMode_Valid(t *testing.T) {
	assert.True(t, InputModeText.Valid())
	assert.True(t, InputModeAudio.Valid())
	assert.False(t, InputMode("video").Valid())
}
