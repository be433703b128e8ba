package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestValidateElevenLabsConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  ElevenLabsConfig
		wantErr bool
	}{
		{
			name:    "missing api key",
			config:  ElevenLabsConfig{},
			wantErr: true,
		},
		{
			name:    "valid minimal",
			config:  ElevenLabsConfig{APIKey: "key"},
			wantErr: false,
		},
		{
			name:    "stability out of range",
			config:  ElevenLabsConfig{APIKey: "key", Stability: 1.5},
			wantErr: true,
		},
		{
			name:    "clarity out of range",
			config:  ElevenLabsConfig{APIKey: "key", Clarity: -0.1},
			wantErr: true,
		},
		{
			name:    "negative chunk size",
			config:  ElevenLabsConfig{APIKey: "key", ChunkSize: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateElevenLabsConfig(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewElevenLabsTTS_AppliesDefaults(t *testing.T) {
	adapter, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "key"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.Equal(t, defaultVoiceID, adapter.config.VoiceID)
	require.Equal(t, defaultModelID, adapter.config.ModelID)
	require.Equal(t, defaultOutputFormat, adapter.config.OutputFormat)
	require.Equal(t, defaultChunkSize, adapter.config.ChunkSize)
}

func TestConvertTextToSpeech_StreamsChunks(t *testing.T) {
	payload := make([]byte, 3000)
	for i := range payload {
		payload[i] = byte(i % 251)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "key", r.Header.Get("xi-api-key"))
		require.Equal(t, "audio/pcm", r.Header.Get("Accept"))
		w.Write(payload)
	}))
	defer server.Close()

	adapter, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:     "key",
		APIBaseURL: server.URL,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	audio, err := adapter.ConvertTextToSpeech(context.Background(), "hello world")
	require.NoError(t, err)

	var received []byte
	for chunk := range audio {
		received = append(received, chunk...)
	}
	require.Equal(t, payload, received)
}

func TestConvertTextToSpeech_EmptyText(t *testing.T) {
	adapter, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "key"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = adapter.ConvertTextToSpeech(context.Background(), "   ")
	require.Error(t, err)
}

func TestConvertTextToSpeech_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	adapter, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:     "key",
		APIBaseURL: server.URL,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	audio, err := adapter.ConvertTextToSpeech(context.Background(), "hello")
	require.NoError(t, err)

	// The channel closes without delivering audio on an API error.
	select {
	case _, ok := <-audio:
		require.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("audio channel never closed")
	}
}

func TestMockTTS_EmitsSilence(t *testing.T) {
	mock := NewMockTTS(zaptest.NewLogger(t))

	audio, err := mock.ConvertTextToSpeech(context.Background(), "a short reply")
	require.NoError(t, err)

	count := 0
	for chunk := range audio {
		require.Len(t, chunk, defaultChunkSize)
		count++
	}
	require.Greater(t, count, 0)
}
