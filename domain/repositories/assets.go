package repositories

import "context"

// AssetGenerator abstracts the external text-to-3D generation service
type AssetGenerator interface {
	// GenerateFromText renders a text description into a 3D asset and returns
	// the viewer-relative path of the saved model file.
	GenerateFromText(ctx context.Context, prompt string, seed int) (string, error)
	// Health reports whether the generation service is reachable
	Health(ctx context.Context) error
}
