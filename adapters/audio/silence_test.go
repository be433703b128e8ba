package audio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSilenceSource_EmitsChunksAtPace(t *testing.T) {
	source := NewSilenceSource(16000)

	chunks, err := source.Start(context.Background())
	require.NoError(t, err)
	defer source.Stop()

	select {
	case chunk := <-chunks:
		// 100ms of 16kHz 16-bit mono audio.
		require.Len(t, chunk, 3200)
	case <-time.After(time.Second):
		t.Fatal("no chunk emitted")
	}
}

func TestSilenceSource_StopClosesChannel(t *testing.T) {
	source := NewSilenceSource(16000)

	chunks, err := source.Start(context.Background())
	require.NoError(t, err)
	require.NoError(t, source.Stop())

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-chunks:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel never closed after Stop")
		}
	}
}

func TestSilenceSource_StopWithoutStart(t *testing.T) {
	source := NewSilenceSource(16000)
	require.NoError(t, source.Stop())
}

func TestSilenceSource_ContextCancelStops(t *testing.T) {
	source := NewSilenceSource(16000)

	ctx, cancel := context.WithCancel(context.Background())
	chunks, err := source.Start(ctx)
	require.NoError(t, err)
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-chunks:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel never closed after context cancel")
		}
	}
}
