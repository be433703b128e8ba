package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/mvanryn/worldweaver/adapters/audio"
	"github.com/mvanryn/worldweaver/adapters/llm"
	"github.com/mvanryn/worldweaver/adapters/mongo"
	"github.com/mvanryn/worldweaver/adapters/stt"
	"github.com/mvanryn/worldweaver/adapters/trellis"
	"github.com/mvanryn/worldweaver/adapters/tts"
	"github.com/mvanryn/worldweaver/domain/repositories"
	"github.com/mvanryn/worldweaver/internal/api"
	"github.com/mvanryn/worldweaver/internal/app"
	"github.com/mvanryn/worldweaver/internal/websocket"
	"github.com/mvanryn/worldweaver/internal/world"
	"github.com/mvanryn/worldweaver/usecase"
)

func main() {
	godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	config := app.LoadConfigFromEnv()

	if config.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              config.SentryDSN,
			TracesSampleRate: 0.1,
		}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// World state and viewer hub.
	cache := world.NewCache()
	hub := websocket.NewHub(cache, logger)
	go hub.Run()

	// Provider adapters, each falling back to a local mock when the
	// corresponding credentials or tools are missing.
	speechToText := newSpeechToText(logger)
	source := newAudioSource(config, logger)
	capture := usecase.NewSpeechCapture(speechToText, source, repositories.AudioConfig{
		SampleRate: config.SampleRate,
		Encoding:   "LINEAR16",
		Language:   "en-US",
	}, logger)

	languageModel := newLanguageModel(logger)
	textToSpeech := newTextToSpeech(logger)
	player := audio.NewExternalPlayer(24000, logger)
	assets := newAssetGenerator(logger)
	store := newTurnStore(logger)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	placer := world.NewPlacer(world.Bounds{
		MinX: -config.WorldHalfExtent,
		MaxX: config.WorldHalfExtent,
		MinZ: -config.WorldHalfExtent,
		MaxZ: config.WorldHalfExtent,
	}, config.MinDistance, config.MaxAttempts, rng)
	query := usecase.NewPositionQuery(hub, cache, config.SnapshotGrace, logger)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Capture:     capture,
		LLM:         languageModel,
		TTS:         textToSpeech,
		Player:      player,
		Assets:      assets,
		Query:       query,
		Broadcaster: hub,
		Placer:      placer,
		Store:       store,
		Logger:      logger,
	}, usecase.PipelineConfig{
		Greeting:     config.Greeting,
		TurnInterval: config.TurnInterval,
		CallTimeout:  config.CallTimeout,
	}, rng)

	pipelineCtx, stopPipeline := context.WithCancel(context.Background())
	go pipeline.Run(pipelineCtx)

	// HTTP surface.
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	api.InitRoutes(e, hub, assets, logger)

	go func() {
		if err := e.Start(config.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("addr", config.HTTPAddr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopPipeline()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}

func newSpeechToText(logger *zap.Logger) repositories.SpeechToText {
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" {
		return stt.NewGoogleSpeechToText(logger)
	}
	logger.Warn("GOOGLE_APPLICATION_CREDENTIALS not set, using mock transcriber")
	return stt.NewMockSpeechToText(logger)
}

func newAudioSource(config app.Config, logger *zap.Logger) repositories.AudioSource {
	if _, err := exec.LookPath("arecord"); err == nil {
		return audio.NewRecorderSource(config.SampleRate, config.AudioDevice, logger)
	}
	logger.Warn("arecord not found, using silent audio source")
	return audio.NewSilenceSource(config.SampleRate)
}

func newLanguageModel(logger *zap.Logger) repositories.LargeLanguageModel {
	geminiConfig := llm.NewGeminiConfigFromEnv()
	if err := llm.ValidateGeminiConfig(geminiConfig); err != nil {
		logger.Warn("gemini unavailable, using mock language model", zap.Error(err))
		return llm.NewMockGeminiLLM()
	}
	model, err := llm.NewGeminiLLM(geminiConfig, logger)
	if err != nil {
		logger.Warn("gemini init failed, using mock language model", zap.Error(err))
		return llm.NewMockGeminiLLM()
	}
	return model
}

func newTextToSpeech(logger *zap.Logger) repositories.TextToSpeech {
	elevenConfig := tts.NewElevenLabsConfigFromEnv()
	synth, err := tts.NewElevenLabsTTS(elevenConfig, logger)
	if err != nil {
		logger.Warn("eleven labs unavailable, using mock synthesizer", zap.Error(err))
		return tts.NewMockTTS(logger)
	}
	return synth
}

func newAssetGenerator(logger *zap.Logger) repositories.AssetGenerator {
	trellisConfig := trellis.NewConfigFromEnv()
	if trellisConfig.BaseURL == "" {
		logger.Warn("TRELLIS_BASE_URL not set, using placeholder model generator")
		return trellis.NewMockGenerator(trellisConfig.ModelsDir, logger)
	}
	return trellis.NewClient(trellisConfig, logger)
}

func newTurnStore(logger *zap.Logger) repositories.TurnStore {
	if os.Getenv("MONGODB_URI") == "" {
		logger.Info("MONGODB_URI not set, conversation history will not be persisted")
		return nil
	}
	client, err := mongo.NewClient(logger)
	if err != nil {
		logger.Warn("mongo unavailable, conversation history will not be persisted", zap.Error(err))
		return nil
	}
	return mongo.NewTurnStore(client.Database)
}
