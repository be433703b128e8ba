package tts

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mvanryn/worldweaver/domain/repositories"
)

// MockTTS emits short bursts of PCM silence instead of calling the
// ElevenLabs API. Used when no API key is configured.
type MockTTS struct {
	logger *zap.Logger
}

var _ repositories.TextToSpeech = (*MockTTS)(nil)

func NewMockTTS(logger *zap.Logger) *MockTTS {
	return &MockTTS{logger: logger}
}

// ConvertTextToSpeech produces a fixed amount of silence sized roughly to
// the length of the input text, one chunk per word.
func (m *MockTTS) ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error) {
	m.logger.Debug("mock synthesis", zap.Int("textLength", len(text)))

	audio := make(chan []byte, 10)
	go func() {
		defer close(audio)
		chunks := len(text)/16 + 1
		for i := 0; i < chunks; i++ {
			select {
			case audio <- make([]byte, defaultChunkSize):
			case <-ctx.Done():
				return
			}
			select {
			case <-time.After(10 * time.Millisecond):
			case <-ctx.Done():
				return
			}
		}
	}()
	return audio, nil
}
