package stt

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mvanryn/worldweaver/domain/repositories"
)

// Canned utterances the mock cycles through, so every turn of an offline run
// asks for something different.
var mockUtterances = []string{
	"I'm imagining a little cottage with a red roof",
	"maybe a twisted old oak tree next to it",
	"how about a glowing mushroom circle",
	"a small stone well would be nice",
}

// MockSpeechToText is a placeholder recognizer for running without Google
// Cloud credentials. It emits an interim fragment and then a canned final
// transcript once enough audio has arrived.
type MockSpeechToText struct {
	logger *zap.Logger

	mu       sync.Mutex
	sessions int
}

func NewMockSpeechToText(logger *zap.Logger) *MockSpeechToText {
	return &MockSpeechToText{logger: logger}
}

func (m *MockSpeechToText) StartStream(ctx context.Context, config repositories.AudioConfig) (repositories.TranscriptStream, error) {
	m.mu.Lock()
	utterance := mockUtterances[m.sessions%len(mockUtterances)]
	m.sessions++
	m.mu.Unlock()

	m.logger.Info("Starting mock transcription session",
		zap.Int("sampleRate", config.SampleRate),
		zap.String("language", config.Language))

	return &mockStream{
		utterance: utterance,
		events:    make(chan repositories.TranscriptEvent, 4),
	}, nil
}

type mockStream struct {
	utterance string
	events    chan repositories.TranscriptEvent

	mu        sync.Mutex
	received  int
	delivered bool
	closed    bool
}

// Send pretends to recognize speech: an interim guess partway through, the
// full utterance once roughly two seconds of audio has arrived.
func (m *mockStream) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.delivered {
		return nil
	}

	m.received += len(data)
	half := len(m.utterance) / 2

	switch {
	case m.received > 64000:
		m.delivered = true
		m.events <- repositories.TranscriptEvent{Text: m.utterance, Final: true}
	case m.received > 32000:
		m.events <- repositories.TranscriptEvent{Text: m.utterance[:half], Final: false}
	}
	return nil
}

func (m *mockStream) Events() <-chan repositories.TranscriptEvent {
	return m.events
}

func (m *mockStream) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}
