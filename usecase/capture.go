package usecase

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/mvanryn/worldweaver/domain/repositories"
)

// ErrCaptureActive is returned when a capture session is started while one is
// already open.
var ErrCaptureActive = errors.New("speech capture session already active")

// TranscriptCapture owns the blocking speech-capture session. Start hands
// back a one-shot channel that delivers the first finalized transcript.
type TranscriptCapture interface {
	Start(ctx context.Context) (<-chan string, error)
	Stop()
}

// SpeechCapture streams microphone audio to the speech-to-text service on a
// dedicated worker goroutine. Speech I/O is long-lived and blocking, so it
// never runs on the goroutine that coordinates network I/O; the finalized
// transcript crosses back over a buffered one-shot channel.
type SpeechCapture struct {
	stt    repositories.SpeechToText
	source repositories.AudioSource
	config repositories.AudioConfig
	logger *zap.Logger

	mu      sync.Mutex
	session *captureSession
}

type captureSession struct {
	stream repositories.TranscriptStream
	cancel context.CancelFunc
	final  chan string
}

func NewSpeechCapture(
	stt repositories.SpeechToText,
	source repositories.AudioSource,
	config repositories.AudioConfig,
	logger *zap.Logger,
) *SpeechCapture {
	return &SpeechCapture{
		stt:    stt,
		source: source,
		config: config,
		logger: logger,
	}
}

// Start opens a capture session. At most one session may be active; starting
// a second is a logic error and returns ErrCaptureActive.
func (c *SpeechCapture) Start(ctx context.Context) (<-chan string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return nil, ErrCaptureActive
	}

	sessionCtx, cancel := context.WithCancel(ctx)

	stream, err := c.stt.StartStream(sessionCtx, c.config)
	if err != nil {
		cancel()
		return nil, err
	}

	chunks, err := c.source.Start(sessionCtx)
	if err != nil {
		stream.Close()
		cancel()
		return nil, err
	}

	session := &captureSession{
		stream: stream,
		cancel: cancel,
		final:  make(chan string, 1),
	}
	c.session = session

	go c.pumpAudio(chunks, stream)
	go c.pumpTranscripts(session)

	c.logger.Info("Speech capture started",
		zap.Int("sampleRate", c.config.SampleRate),
		zap.String("language", c.config.Language))

	return session.final, nil
}

// Stop tears down the active session. Stopping when no session is open is a
// no-op.
func (c *SpeechCapture) Stop() {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.mu.Unlock()

	if session == nil {
		return
	}

	session.cancel()
	if err := c.source.Stop(); err != nil {
		c.logger.Warn("Failed to stop audio source", zap.Error(err))
	}
	if err := session.stream.Close(); err != nil {
		c.logger.Warn("Failed to close transcript stream", zap.Error(err))
	}
	c.logger.Info("Speech capture stopped")
}

// pumpAudio forwards captured audio chunks into the recognizer until the
// source channel closes.
func (c *SpeechCapture) pumpAudio(chunks <-chan []byte, stream repositories.TranscriptStream) {
	for chunk := range chunks {
		if err := stream.Send(chunk); err != nil {
			c.logger.Error("Failed to stream audio chunk", zap.Error(err))
			return
		}
	}
}

// pumpTranscripts watches recognition events. Interim fragments are
// informational only; the first finalized fragment is handed to the waiting
// caller and the worker exits.
func (c *SpeechCapture) pumpTranscripts(session *captureSession) {
	for event := range session.stream.Events() {
		if !event.Final {
			c.logger.Debug("Interim transcript", zap.String("text", event.Text))
			continue
		}

		c.logger.Info("Final transcript", zap.String("text", event.Text))
		select {
		case session.final <- event.Text:
		default:
			// A final was already delivered for this session.
		}
		return
	}
}
