package audio

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"go.uber.org/zap"

	"github.com/mvanryn/worldweaver/domain/repositories"
)

// ExternalPlayer plays raw PCM by piping it into an external player
// process, preferring ffplay and falling back to aplay.
type ExternalPlayer struct {
	sampleRate int
	logger     *zap.Logger
}

var _ repositories.AudioPlayer = (*ExternalPlayer)(nil)

func NewExternalPlayer(sampleRate int, logger *zap.Logger) *ExternalPlayer {
	return &ExternalPlayer{sampleRate: sampleRate, logger: logger}
}

func (p *ExternalPlayer) command(ctx context.Context) (*exec.Cmd, error) {
	rate := strconv.Itoa(p.sampleRate)
	if _, err := exec.LookPath("ffplay"); err == nil {
		return exec.CommandContext(ctx, "ffplay",
			"-autoexit", "-nodisp", "-loglevel", "quiet",
			"-f", "s16le", "-ar", rate, "-i", "-"), nil
	}
	if _, err := exec.LookPath("aplay"); err == nil {
		return exec.CommandContext(ctx, "aplay",
			"-q", "-f", "S16_LE", "-r", rate, "-c", "1", "-t", "raw"), nil
	}
	return nil, fmt.Errorf("no audio player found, install ffplay or aplay")
}

// Play pipes every chunk from the channel into the player's stdin and
// blocks until the channel closes and playback drains.
func (p *ExternalPlayer) Play(ctx context.Context, audio <-chan []byte) error {
	cmd, err := p.command(ctx)
	if err != nil {
		return err
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open player stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start player: %w", err)
	}

	written := 0
	for {
		select {
		case chunk, ok := <-audio:
			if !ok {
				stdin.Close()
				if err := cmd.Wait(); err != nil && ctx.Err() == nil {
					return fmt.Errorf("player exited with error: %w", err)
				}
				p.logger.Debug("finished playback", zap.Int("bytes", written))
				return ctx.Err()
			}
			if _, err := stdin.Write(chunk); err != nil {
				stdin.Close()
				cmd.Wait()
				return fmt.Errorf("failed to write audio to player: %w", err)
			}
			written += len(chunk)
		case <-ctx.Done():
			stdin.Close()
			cmd.Wait()
			return ctx.Err()
		}
	}
}
