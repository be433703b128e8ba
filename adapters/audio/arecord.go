package audio

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/mvanryn/worldweaver/domain/repositories"
)

const captureChunkSize = 3200 // 100ms of 16kHz 16-bit mono PCM

// RecorderSource captures microphone audio by running arecord and reading
// raw PCM from its stdout.
type RecorderSource struct {
	sampleRate int
	device     string
	logger     *zap.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	cancel context.CancelFunc
}

var _ repositories.AudioSource = (*RecorderSource)(nil)

// NewRecorderSource creates a source reading from the given ALSA device.
// An empty device uses the system default.
func NewRecorderSource(sampleRate int, device string, logger *zap.Logger) *RecorderSource {
	return &RecorderSource{
		sampleRate: sampleRate,
		device:     device,
		logger:     logger,
	}
}

// Start launches arecord and streams captured chunks until the context is
// cancelled, Stop is called, or the process exits.
func (r *RecorderSource) Start(ctx context.Context) (<-chan []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return nil, fmt.Errorf("capture already running")
	}

	args := []string{
		"-q",
		"-f", "S16_LE",
		"-r", strconv.Itoa(r.sampleRate),
		"-c", "1",
		"-t", "raw",
	}
	if r.device != "" {
		args = append(args, "-D", r.device)
	}

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, "arecord", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open arecord stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start arecord: %w", err)
	}

	r.cmd = cmd
	r.cancel = cancel
	r.logger.Info("started microphone capture",
		zap.Int("sampleRate", r.sampleRate),
		zap.String("device", r.device))

	chunks := make(chan []byte, 16)
	go r.pump(stdout, chunks)
	return chunks, nil
}

func (r *RecorderSource) pump(stdout io.Reader, chunks chan<- []byte) {
	defer close(chunks)
	defer r.reap()

	buffer := make([]byte, captureChunkSize)
	for {
		n, err := io.ReadFull(stdout, buffer)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buffer[:n])
			chunks <- chunk
		}
		if err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				r.logger.Warn("microphone capture ended", zap.Error(err))
			}
			return
		}
	}
}

func (r *RecorderSource) reap() {
	r.mu.Lock()
	cmd := r.cmd
	r.cmd = nil
	r.cancel = nil
	r.mu.Unlock()

	if cmd != nil {
		cmd.Wait()
	}
}

// Stop terminates the capture process. Safe to call when not running.
func (r *RecorderSource) Stop() error {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}
