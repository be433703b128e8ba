package stt

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/mvanryn/worldweaver/domain/repositories"
)

func TestMockSpeechToText_EmitsInterimThenFinal(t *testing.T) {
	mock := NewMockSpeechToText(zaptest.NewLogger(t))

	stream, err := mock.StartStream(context.Background(), repositories.AudioConfig{
		SampleRate: 16000,
		Encoding:   "LINEAR16",
		Language:   "en-US",
	})
	if err != nil {
		t.Fatalf("StartStream failed: %v", err)
	}
	defer stream.Close()

	chunk := make([]byte, 16000)
	var events []repositories.TranscriptEvent
	for i := 0; i < 8; i++ {
		if err := stream.Send(chunk); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	drain:
		for {
			select {
			case event := <-stream.Events():
				events = append(events, event)
			default:
				break drain
			}
		}
	}

	if len(events) < 2 {
		t.Fatalf("Expected interim and final events, got %d", len(events))
	}
	if events[0].Final {
		t.Error("First event should be interim")
	}
	last := events[len(events)-1]
	if !last.Final {
		t.Error("Last event should be final")
	}
	if last.Text == "" {
		t.Error("Final transcript should not be empty")
	}
}

func TestMockSpeechToText_CyclesUtterances(t *testing.T) {
	mock := NewMockSpeechToText(zaptest.NewLogger(t))

	finals := make(map[string]bool)
	for i := 0; i < 2; i++ {
		stream, err := mock.StartStream(context.Background(), repositories.AudioConfig{})
		if err != nil {
			t.Fatalf("StartStream failed: %v", err)
		}
		stream.Send(make([]byte, 70000))
		event := <-stream.Events()
		for !event.Final {
			event = <-stream.Events()
		}
		finals[event.Text] = true
		stream.Close()
	}

	if len(finals) != 2 {
		t.Errorf("Expected distinct utterances per session, got %v", finals)
	}
}
