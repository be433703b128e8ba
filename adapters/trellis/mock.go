package trellis

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mvanryn/worldweaver/domain/repositories"
)

// glbHeader is the 12-byte binary glTF container header with a zero length,
// enough for a viewer to recognize the file type.
var glbHeader = []byte{'g', 'l', 'T', 'F', 2, 0, 0, 0, 0, 0, 0, 0}

// MockGenerator writes placeholder GLB files locally instead of calling a
// generation service. Used when no Trellis endpoint is configured.
type MockGenerator struct {
	modelsDir string
	logger    *zap.Logger
}

var _ repositories.AssetGenerator = (*MockGenerator)(nil)

func NewMockGenerator(modelsDir string, logger *zap.Logger) *MockGenerator {
	if modelsDir == "" {
		modelsDir = "models"
	}
	return &MockGenerator{modelsDir: modelsDir, logger: logger}
}

func (m *MockGenerator) GenerateFromText(ctx context.Context, prompt string, seed int) (string, error) {
	if err := os.MkdirAll(m.modelsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create models directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%d.glb", slugify(prompt), time.Now().Unix())
	fullPath := filepath.Join(m.modelsDir, filename)
	if err := os.WriteFile(fullPath, glbHeader, 0o644); err != nil {
		return "", fmt.Errorf("failed to write placeholder model: %w", err)
	}

	m.logger.Info("wrote placeholder model",
		zap.String("prompt", prompt),
		zap.String("file", fullPath))
	return path.Join(filepath.Base(m.modelsDir), filename), nil
}

func (m *MockGenerator) Health(ctx context.Context) error {
	return nil
}
