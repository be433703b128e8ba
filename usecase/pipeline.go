package usecase

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mvanryn/worldweaver/domain/entities"
	"github.com/mvanryn/worldweaver/domain/repositories"
	"github.com/mvanryn/worldweaver/internal/websocket"
	"github.com/mvanryn/worldweaver/internal/world"
)

// PipelineState is the orchestrator's position in the turn state machine
type PipelineState string

const (
	StateIdle           PipelineState = "idle"
	StateCaptureStarted PipelineState = "capture_started"
	StateTranscribed    PipelineState = "transcribed"
	StateResponded      PipelineState = "responded"
	StateSynthesized    PipelineState = "synthesized"
	StateAssetRequested PipelineState = "asset_requested"
	StatePlaced         PipelineState = "placed"
)

const (
	defaultGreeting     = "Hello! What do you want to explore today?"
	defaultTurnInterval = 5 * time.Second
	defaultCallTimeout  = 60 * time.Second

	minObjectScale = 2.5
	maxObjectScale = 7.5
)

// PipelineConfig tunes the turn loop
type PipelineConfig struct {
	Greeting     string
	TurnInterval time.Duration
	CallTimeout  time.Duration
}

// PipelineDeps are the collaborators of the orchestrator
type PipelineDeps struct {
	Capture     TranscriptCapture
	LLM         repositories.LargeLanguageModel
	TTS         repositories.TextToSpeech
	Player      repositories.AudioPlayer
	Assets      repositories.AssetGenerator
	Query       *PositionQuery
	Broadcaster Broadcaster
	Placer      *world.Placer
	Store       repositories.TurnStore // optional, best effort
	Logger      *zap.Logger
}

// Pipeline is the top-level turn-taking loop: capture speech, converse,
// synthesize a reply, generate an asset, and place it in the world. One
// instance, one turn at a time; all of its state is owned by the single
// goroutine running Run.
type Pipeline struct {
	capture     TranscriptCapture
	llm         repositories.LargeLanguageModel
	tts         repositories.TextToSpeech
	player      repositories.AudioPlayer
	assets      repositories.AssetGenerator
	query       *PositionQuery
	broadcaster Broadcaster
	placer      *world.Placer
	store       repositories.TurnStore
	logger      *zap.Logger

	config    PipelineConfig
	rng       *rand.Rand
	sessionID string

	chat    repositories.ChatSession
	history []repositories.ChatMessage
	state   PipelineState
}

func NewPipeline(deps PipelineDeps, config PipelineConfig, rng *rand.Rand) *Pipeline {
	if config.Greeting == "" {
		config.Greeting = defaultGreeting
	}
	if config.TurnInterval == 0 {
		config.TurnInterval = defaultTurnInterval
	}
	if config.CallTimeout == 0 {
		config.CallTimeout = defaultCallTimeout
	}

	return &Pipeline{
		capture:     deps.Capture,
		llm:         deps.LLM,
		tts:         deps.TTS,
		player:      deps.Player,
		assets:      deps.Assets,
		query:       deps.Query,
		broadcaster: deps.Broadcaster,
		placer:      deps.Placer,
		store:       deps.Store,
		logger:      deps.Logger,
		config:      config,
		rng:         rng,
		sessionID:   uuid.NewString(),
		state:       StateIdle,
	}
}

// State reports the orchestrator's current position in the turn state machine
func (p *Pipeline) State() PipelineState {
	return p.state
}

// History returns the accumulated conversation turns
func (p *Pipeline) History() []repositories.ChatMessage {
	return p.history
}

// Run drives turns until the context is cancelled. The assistant greets the
// user once before the first capture session opens.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("Conversation pipeline started", zap.String("sessionID", p.sessionID))
	p.speak(ctx, p.config.Greeting)

	for {
		p.RunTurn(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.config.TurnInterval):
		}
	}
}

// ensureChat lazily opens the chat session carrying the conversation context
func (p *Pipeline) ensureChat(ctx context.Context) error {
	if p.chat != nil {
		return nil
	}
	chat, err := p.llm.GenerateChat(ctx, p.history)
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	p.chat = chat
	return nil
}

// RunTurn executes one full turn of the state machine. Every failure is
// turn-scoped: the per-turn job is discarded, the state returns to idle, and
// the next turn starts fresh.
func (p *Pipeline) RunTurn(ctx context.Context) {
	defer p.setState(StateIdle)

	if err := p.ensureChat(ctx); err != nil {
		p.logger.Error("Failed to open chat session", zap.Error(err))
		return
	}

	final, err := p.capture.Start(ctx)
	if err != nil {
		p.logger.Error("Failed to start speech capture", zap.Error(err))
		return
	}
	p.setState(StateCaptureStarted)

	var transcript string
	select {
	case transcript = <-final:
	case <-ctx.Done():
		p.capture.Stop()
		return
	}

	// Capture pauses while the turn is processed; the user cannot speak over
	// the assistant's turn.
	p.capture.Stop()
	p.setState(StateTranscribed)
	p.logger.Info("User turn transcribed", zap.String("transcript", transcript))

	userTurn := repositories.ChatMessage{Role: repositories.UserRole, Content: transcript}
	p.history = append(p.history, userTurn)
	p.saveTurn(userTurn)

	callCtx, cancel := context.WithTimeout(ctx, p.config.CallTimeout)
	reply, err := p.chat.SendMessage(callCtx, userTurn)
	cancel()
	if err != nil {
		p.abortTurn("language model call failed", err)
		return
	}
	p.history = append(p.history, reply)
	p.saveTurn(reply)
	p.setState(StateResponded)
	p.logger.Info("Assistant replied", zap.String("reply", reply.Content))

	// Synthesis failure is non-fatal: the textual reply still drives asset
	// generation, playback is just skipped.
	p.speak(ctx, reply.Content)
	p.setState(StateSynthesized)

	description, found := ExtractObjectDescription(reply.Content)
	if !found {
		p.logger.Info("Reply is a conversational follow-up; no object this turn")
		return
	}

	genCtx, cancel := context.WithTimeout(ctx, p.config.CallTimeout)
	assetPath, err := p.assets.GenerateFromText(genCtx, description, p.rng.Intn(1_000_000)+1)
	cancel()
	if err != nil {
		p.abortTurn("asset generation failed", err)
		return
	}
	p.setState(StateAssetRequested)
	p.logger.Info("Asset generated",
		zap.String("description", description),
		zap.String("path", assetPath))

	placement := p.placeObject(ctx, assetPath)
	message := websocket.NewLoadObjectMessage(placement)
	if err := p.broadcaster.Broadcast(message); err != nil {
		p.abortTurn("placement broadcast failed", err)
		return
	}
	p.savePlacement(placement)
	p.setState(StatePlaced)
	p.logger.Info("Object placed",
		zap.String("objectID", placement.ID),
		zap.Float64("x", placement.Position.X),
		zap.Float64("z", placement.Position.Z))
}

// placeObject queries viewers for current positions, waits out the grace
// period, and chooses a clear spot for the new asset.
func (p *Pipeline) placeObject(ctx context.Context, assetPath string) entities.ObjectPlacement {
	var existing []entities.Vector3
	if snapshot, ok := p.query.AwaitSnapshot(ctx); ok {
		existing = snapshot.Positions()
	}

	objectType := strings.TrimSuffix(filepath.Base(assetPath), filepath.Ext(assetPath))

	return entities.ObjectPlacement{
		ID:       entities.NewObjectID(objectType),
		Path:     assetPath,
		Position: p.placer.ChoosePosition(existing),
		Rotation: entities.Vector3{Y: p.rng.Float64() * 2 * math.Pi},
		Scale: entities.Vector3{
			X: p.randomScale(),
			Y: p.randomScale(),
			Z: p.randomScale(),
		},
	}
}

func (p *Pipeline) randomScale() float64 {
	return minObjectScale + p.rng.Float64()*(maxObjectScale-minObjectScale)
}

// abortTurn records a turn-scoped failure. Nothing here is fatal to the
// process; the discarded job simply produces no placement.
func (p *Pipeline) abortTurn(reason string, err error) {
	p.logger.Error("Turn aborted",
		zap.String("reason", reason),
		zap.Error(err))
	sentry.CaptureException(fmt.Errorf("%s: %w", reason, err))
}

func (p *Pipeline) speak(ctx context.Context, text string) {
	synthCtx, cancel := context.WithTimeout(ctx, p.config.CallTimeout)
	defer cancel()

	audio, err := p.tts.ConvertTextToSpeech(synthCtx, text)
	if err != nil {
		p.logger.Warn("Speech synthesis failed, skipping playback", zap.Error(err))
		return
	}
	if err := p.player.Play(synthCtx, audio); err != nil {
		p.logger.Warn("Audio playback failed", zap.Error(err))
	}
}

func (p *Pipeline) saveTurn(turn repositories.ChatMessage) {
	if p.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.store.SaveTurn(ctx, p.sessionID, turn); err != nil {
		p.logger.Warn("Failed to persist conversation turn", zap.Error(err))
	}
}

func (p *Pipeline) savePlacement(placement entities.ObjectPlacement) {
	if p.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.store.SavePlacement(ctx, p.sessionID, placement); err != nil {
		p.logger.Warn("Failed to persist placement", zap.Error(err))
	}
}

func (p *Pipeline) setState(state PipelineState) {
	p.state = state
	p.logger.Debug("Pipeline state transition", zap.String("state", string(state)))
}
