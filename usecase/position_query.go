package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mvanryn/worldweaver/domain/entities"
	"github.com/mvanryn/worldweaver/internal/websocket"
	"github.com/mvanryn/worldweaver/internal/world"
)

// Broadcaster fans a message out to every connected viewer
type Broadcaster interface {
	Broadcast(message interface{}) error
}

// PositionQuery asks viewers for a fresh report of object positions. The
// protocol is fire-and-forget: any reply, whichever request it logically
// answers, lands in the world cache. Callers that need a snapshot before
// proceeding wait a bounded grace period and then read whatever is cached.
type PositionQuery struct {
	broadcaster Broadcaster
	cache       *world.Cache
	grace       time.Duration
	logger      *zap.Logger
}

func NewPositionQuery(broadcaster Broadcaster, cache *world.Cache, grace time.Duration, logger *zap.Logger) *PositionQuery {
	return &PositionQuery{
		broadcaster: broadcaster,
		cache:       cache,
		grace:       grace,
		logger:      logger,
	}
}

// Request broadcasts a get-object-positions message with a fresh correlation
// id and returns that id. It does not wait for replies.
func (q *PositionQuery) Request() (string, error) {
	message := websocket.NewPositionRequestMessage()
	if err := q.broadcaster.Broadcast(message); err != nil {
		return "", err
	}
	q.logger.Info("Requested object positions", zap.String("requestID", message.RequestID))
	return message.RequestID, nil
}

// AwaitSnapshot issues a request, waits out the grace period, and returns the
// snapshot currently cached. The snapshot may be stale, answer an older
// request, or be absent entirely: placement is opportunistic, not
// safety-critical, so soft consistency is enough.
func (q *PositionQuery) AwaitSnapshot(ctx context.Context) (entities.WorldSnapshot, bool) {
	if _, err := q.Request(); err != nil {
		q.logger.Warn("Position request broadcast failed", zap.Error(err))
	}

	select {
	case <-time.After(q.grace):
	case <-ctx.Done():
		return entities.WorldSnapshot{}, false
	}

	return q.cache.Read()
}
