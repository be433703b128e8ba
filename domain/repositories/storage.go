package repositories

import (
	"context"

	"github.com/mvanryn/worldweaver/domain/entities"
)

// TurnStore records completed conversation turns and placements for later
// review. Recording is best effort; the pipeline never fails a turn on a
// store error.
type TurnStore interface {
	SaveTurn(ctx context.Context, sessionID string, turn ChatMessage) error
	SavePlacement(ctx context.Context, sessionID string, placement entities.ObjectPlacement) error
}
