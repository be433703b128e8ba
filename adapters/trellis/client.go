// Package trellis talks to a Trellis text-to-3D generation service over HTTP.
package trellis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/mvanryn/worldweaver/domain/repositories"
)

const (
	defaultBaseURL = "http://localhost:8000"
	defaultTimeout = 5 * time.Minute

	healthTimeout = 5 * time.Second
)

// Config configures the Trellis client. ModelsDir is where generated GLB
// files are written; the paths handed to viewers are relative to its parent.
type Config struct {
	BaseURL   string
	ModelsDir string
	Timeout   time.Duration
}

// NewConfigFromEnv reads the client configuration from TRELLIS_* environment
// variables, falling back to defaults.
func NewConfigFromEnv() Config {
	config := Config{
		BaseURL:   os.Getenv("TRELLIS_BASE_URL"),
		ModelsDir: os.Getenv("TRELLIS_MODELS_DIR"),
	}
	if raw := os.Getenv("TRELLIS_TIMEOUT"); raw != "" {
		if timeout, err := time.ParseDuration(raw); err == nil && timeout > 0 {
			config.Timeout = timeout
		}
	}
	return config
}

// Client implements AssetGenerator against the Trellis HTTP API.
type Client struct {
	baseURL   string
	modelsDir string
	client    *http.Client
	logger    *zap.Logger
}

var _ repositories.AssetGenerator = (*Client)(nil)

type generateRequest struct {
	Prompt string `json:"prompt"`
	Seed   int    `json:"seed"`
}

func NewClient(config Config, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.ModelsDir == "" {
		config.ModelsDir = "models"
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(config.BaseURL, "/"),
		modelsDir: config.ModelsDir,
		client:    &http.Client{Timeout: config.Timeout},
		logger:    logger,
	}
}

// GenerateFromText asks the service to build a model for the prompt, saves
// the returned GLB under the models directory, and returns the viewer-facing
// path, for example "models/small_red_house_1700000000.glb".
func (c *Client) GenerateFromText(ctx context.Context, prompt string, seed int) (string, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt, Seed: seed})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	url := c.baseURL + "/generate/text"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Info("requesting model generation",
		zap.String("prompt", prompt),
		zap.Int("seed", seed))
	started := time.Now()

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("generation service returned %d: %s", resp.StatusCode, string(errorBody))
	}

	glb, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read generated model: %w", err)
	}
	if len(glb) == 0 {
		return "", fmt.Errorf("generation service returned an empty model")
	}

	if err := os.MkdirAll(c.modelsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create models directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%d.glb", slugify(prompt), time.Now().Unix())
	fullPath := filepath.Join(c.modelsDir, filename)
	if err := os.WriteFile(fullPath, glb, 0o644); err != nil {
		return "", fmt.Errorf("failed to save generated model: %w", err)
	}

	c.logger.Info("model generated",
		zap.String("file", fullPath),
		zap.Int("bytes", len(glb)),
		zap.Duration("took", time.Since(started)))

	return path.Join(filepath.Base(c.modelsDir), filename), nil
}

// Health checks whether the generation service is reachable.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("generation service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("generation service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// slugify reduces a prompt to a short filesystem-safe token.
func slugify(prompt string) string {
	var b strings.Builder
	words := 0
	for _, word := range strings.Fields(strings.ToLower(prompt)) {
		cleaned := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, word)
		if cleaned == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('_')
		}
		b.WriteString(cleaned)
		words++
		if words == 4 {
			break
		}
	}
	if b.Len() == 0 {
		return "object"
	}
	return b.String()
}
