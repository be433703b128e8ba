package repositories

import "context"

// SpeechToText abstracts streaming speech recognition services
type SpeechToText interface {
	// StartStream opens a streaming transcription session
	StartStream(ctx context.Context, config AudioConfig) (TranscriptStream, error)
}

// AudioConfig represents audio configuration for speech recognition
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`
}

// TranscriptEvent is one recognition result. Interim events carry the
// recognizer's current guess and may be revised; a final event will not.
type TranscriptEvent struct {
	Text  string
	Final bool
}

// TranscriptStream is an open recognition session. Audio goes in through
// Send; results come out of Events. The events channel is closed when the
// stream ends, whether by Close or by a provider-side error.
type TranscriptStream interface {
	Send(data []byte) error
	Events() <-chan TranscriptEvent
	Close() error
}
