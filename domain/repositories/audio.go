package repositories

import "context"

// AudioSource produces raw audio from a capture device. Start may be called
// again after Stop; only one capture may be open at a time.
type AudioSource interface {
	// Start begins capture and returns a channel of audio chunks. The channel
	// is closed when the source stops or the context is cancelled.
	Start(ctx context.Context) (<-chan []byte, error)
	Stop() error
}

// AudioPlayer plays a stream of audio chunks locally, blocking until the
// stream is drained or the context is cancelled.
type AudioPlayer interface {
	Play(ctx context.Context, audio <-chan []byte) error
}
