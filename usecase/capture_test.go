package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mvanryn/worldweaver/domain/repositories"
)

type stubStream struct {
	mu     sync.Mutex
	events chan repositories.TranscriptEvent
	sent   [][]byte
	closed bool
}

func newStubStream() *stubStream {
	return &stubStream{events: make(chan repositories.TranscriptEvent, 8)}
}

func (s *stubStream) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, data)
	return nil
}

func (s *stubStream) Events() <-chan repositories.TranscriptEvent {
	return s.events
}

func (s *stubStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	return nil
}

func (s *stubStream) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type stubSTT struct {
	mu      sync.Mutex
	streams []*stubStream
}

func (s *stubSTT) StartStream(ctx context.Context, config repositories.AudioConfig) (repositories.TranscriptStream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stream := newStubStream()
	s.streams = append(s.streams, stream)
	return stream, nil
}

func (s *stubSTT) latest() *stubStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streams[len(s.streams)-1]
}

type stubSource struct {
	mu     sync.Mutex
	chunks chan []byte
	closed bool
}

func newStubSource() *stubSource {
	return &stubSource{chunks: make(chan []byte, 8)}
}

func (s *stubSource) Start(ctx context.Context) (<-chan []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = make(chan []byte, 8)
	s.closed = false
	return s.chunks, nil
}

func (s *stubSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.chunks)
	}
	return nil
}

func newTestCapture() (*SpeechCapture, *stubSTT, *stubSource) {
	stt := &stubSTT{}
	source := newStubSource()
	capture := NewSpeechCapture(stt, source, repositories.AudioConfig{
		SampleRate: 16000,
		Encoding:   "LINEAR16",
		Language:   "en-US",
	}, zap.NewNop())
	return capture, stt, source
}

func TestSpeechCapture_FinalTranscriptDelivered(t *testing.T) {
	capture, stt, _ := newTestCapture()
	defer capture.Stop()

	final, err := capture.Start(context.Background())
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	stream := stt.latest()
	stream.events <- repositories.TranscriptEvent{Text: "a tiny", Final: false}
	stream.events <- repositories.TranscriptEvent{Text: "a tiny glowing", Final: false}

	// Interim fragments must not resolve the transcript.
	select {
	case text := <-final:
		t.Fatalf("Interim fragment surfaced as final: %q", text)
	case <-time.After(50 * time.Millisecond):
	}

	stream.events <- repositories.TranscriptEvent{Text: "a tiny glowing mushroom", Final: true}

	select {
	case text := <-final:
		if text != "a tiny glowing mushroom" {
			t.Errorf("Unexpected transcript: %q", text)
		}
	case <-time.After(time.Second):
		t.Fatal("Final transcript never delivered")
	}
}

func TestSpeechCapture_SecondStartRejected(t *testing.T) {
	capture, _, _ := newTestCapture()
	defer capture.Stop()

	if _, err := capture.Start(context.Background()); err != nil {
		t.Fatalf("First start failed: %v", err)
	}

	if _, err := capture.Start(context.Background()); err != ErrCaptureActive {
		t.Errorf("Expected ErrCaptureActive, got %v", err)
	}
}

func TestSpeechCapture_RestartAfterStop(t *testing.T) {
	capture, stt, _ := newTestCapture()

	if _, err := capture.Start(context.Background()); err != nil {
		t.Fatalf("First start failed: %v", err)
	}
	capture.Stop()

	final, err := capture.Start(context.Background())
	if err != nil {
		t.Fatalf("Restart after stop failed: %v", err)
	}
	defer capture.Stop()

	stt.latest().events <- repositories.TranscriptEvent{Text: "hello again", Final: true}
	select {
	case text := <-final:
		if text != "hello again" {
			t.Errorf("Unexpected transcript: %q", text)
		}
	case <-time.After(time.Second):
		t.Fatal("Final transcript never delivered after restart")
	}
}

func TestSpeechCapture_AudioForwardedToRecognizer(t *testing.T) {
	capture, stt, source := newTestCapture()
	defer capture.Stop()

	if _, err := capture.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	source.chunks <- []byte{1, 2, 3}
	source.chunks <- []byte{4, 5, 6}

	stream := stt.latest()
	deadline := time.Now().Add(time.Second)
	for stream.sentCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("Expected 2 chunks forwarded, got %d", stream.sentCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSpeechCapture_StopWithoutStartIsNoop(t *testing.T) {
	capture, _, _ := newTestCapture()
	capture.Stop() // must not panic
}
