package app

import (
	"os"
	"strconv"
	"time"
)

// Config is the process-level configuration read from the environment.
// Provider-specific settings (ElevenLabs, Gemini, Trellis) are read by
// their adapters.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	SentryDSN string

	// Voice capture
	SampleRate  int
	AudioDevice string

	// Conversation pacing
	Greeting     string
	TurnInterval time.Duration
	CallTimeout  time.Duration

	// World geometry
	WorldHalfExtent float64
	MinDistance     float64
	MaxAttempts     int
	SnapshotGrace   time.Duration

	// Persistence
	MongoURI string
}

func LoadConfigFromEnv() Config {
	return Config{
		HTTPAddr:  getenv("HTTP_ADDR", ":8765"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		SentryDSN: getenv("SENTRY_DSN", ""),

		SampleRate:  getint("AUDIO_SAMPLE_RATE", 16000),
		AudioDevice: getenv("AUDIO_DEVICE", ""),

		Greeting:     getenv("GREETING_TEXT", "Hello! What do you want to explore today?"),
		TurnInterval: getduration("TURN_INTERVAL", 5*time.Second),
		CallTimeout:  getduration("CALL_TIMEOUT", 60*time.Second),

		WorldHalfExtent: getfloat("WORLD_HALF_EXTENT", 10),
		MinDistance:     getfloat("PLACEMENT_MIN_DISTANCE", 3),
		MaxAttempts:     getint("PLACEMENT_MAX_ATTEMPTS", 10),
		SnapshotGrace:   getduration("SNAPSHOT_GRACE", time.Second),

		MongoURI: getenv("MONGODB_URI", ""),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
