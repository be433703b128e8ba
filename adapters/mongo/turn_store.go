package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mvanryn/worldweaver/domain/entities"
	"github.com/mvanryn/worldweaver/domain/repositories"
)

// TurnStore persists conversation turns and object placements.
type TurnStore struct {
	turns      *mongo.Collection
	placements *mongo.Collection
}

var _ repositories.TurnStore = (*TurnStore)(nil)

func NewTurnStore(db *mongo.Database) *TurnStore {
	return &TurnStore{
		turns:      db.Collection("turns"),
		placements: db.Collection("placements"),
	}
}

// SaveTurn records one conversation message for a session.
func (s *TurnStore) SaveTurn(ctx context.Context, sessionID string, turn repositories.ChatMessage) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}

	doc := bson.M{
		"session_id":  sessionID,
		"role":        string(turn.Role),
		"content":     turn.Content,
		"recorded_at": time.Now(),
	}
	if _, err := s.turns.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}
	return nil
}

// SavePlacement records a placed object for a session.
func (s *TurnStore) SavePlacement(ctx context.Context, sessionID string, placement entities.ObjectPlacement) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}

	doc := bson.M{
		"session_id":  sessionID,
		"object_id":   placement.ID,
		"path":        placement.Path,
		"position":    placement.Position,
		"rotation":    placement.Rotation,
		"scale":       placement.Scale,
		"recorded_at": time.Now(),
	}
	if _, err := s.placements.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to save placement: %w", err)
	}
	return nil
}

// TurnsBySession returns the recorded turns for a session in insertion order.
func (s *TurnStore) TurnsBySession(ctx context.Context, sessionID string) ([]repositories.ChatMessage, error) {
	cursor, err := s.turns.Find(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []repositories.ChatMessage
	for cursor.Next(ctx) {
		var doc struct {
			Role    string `bson:"role"`
			Content string `bson:"content"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode turn: %w", err)
		}
		messages = append(messages, repositories.ChatMessage{
			Role:    repositories.Role(doc.Role),
			Content: doc.Content,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turns: %w", err)
	}
	return messages, nil
}
