package audio

import (
	"context"
	"sync"
	"time"

	"github.com/mvanryn/worldweaver/domain/repositories"
)

// SilenceSource emits silent PCM chunks at real-time pace. It stands in for
// the microphone when no capture device is available, and paired with the
// mock transcriber it still drives full conversation turns.
type SilenceSource struct {
	sampleRate int

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ repositories.AudioSource = (*SilenceSource)(nil)

func NewSilenceSource(sampleRate int) *SilenceSource {
	return &SilenceSource{sampleRate: sampleRate}
}

func (s *SilenceSource) Start(ctx context.Context) (<-chan []byte, error) {
	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	chunkSize := s.sampleRate / 10 * 2 // 100ms of 16-bit mono
	chunks := make(chan []byte, 16)
	go func() {
		defer close(chunks)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case chunks <- make([]byte, chunkSize):
				case <-runCtx.Done():
					return
				}
			case <-runCtx.Done():
				return
			}
		}
	}()
	return chunks, nil
}

func (s *SilenceSource) Stop() error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}
