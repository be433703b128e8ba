package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mvanryn/worldweaver/domain/entities"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypeLoadObject         MessageType = "load-object"
	MessageTypeGetObjectPositions MessageType = "get-object-positions"
	MessageTypeObjectPositions    MessageType = "object-positions"
)

// LoadObjectMessage instructs viewers to load and position a newly generated
// asset. Fire-and-forget, server to viewer; never retracted or updated.
type LoadObjectMessage struct {
	Type     MessageType      `json:"type"`
	ID       string           `json:"id"`
	Path     string           `json:"path"`
	Position entities.Vector3 `json:"position"`
	Rotation entities.Vector3 `json:"rotation"`
	Scale    entities.Vector3 `json:"scale"`
}

// NewLoadObjectMessage wraps a placement for the wire
func NewLoadObjectMessage(placement entities.ObjectPlacement) LoadObjectMessage {
	return LoadObjectMessage{
		Type:     MessageTypeLoadObject,
		ID:       placement.ID,
		Path:     placement.Path,
		Position: placement.Position,
		Rotation: placement.Rotation,
		Scale:    placement.Scale,
	}
}

// PositionRequestMessage asks viewers for a fresh report of their object
// positions. Server to viewer.
type PositionRequestMessage struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"requestId"`
	Timestamp int64       `json:"timestamp"` // unix milliseconds
}

// NewPositionRequestMessage builds a request with a fresh correlation id
func NewPositionRequestMessage() PositionRequestMessage {
	return PositionRequestMessage{
		Type:      MessageTypeGetObjectPositions,
		RequestID: uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
	}
}

// ObjectPositionsMessage is a viewer's report of every object it can see.
// Viewer to server; installs a new world snapshot.
type ObjectPositionsMessage struct {
	Type      MessageType                      `json:"type"`
	RequestID string                           `json:"requestId,omitempty"`
	Objects   map[string]entities.ObjectState `json:"objects"`
}

// Snapshot converts the report into a world snapshot
func (m ObjectPositionsMessage) Snapshot() entities.WorldSnapshot {
	objects := m.Objects
	if objects == nil {
		objects = map[string]entities.ObjectState{}
	}
	return entities.WorldSnapshot{
		RequestID:  m.RequestID,
		ReportedAt: time.Now(),
		Objects:    objects,
	}
}

type baseMessage struct {
	Type MessageType `json:"type"`
}

// DecodeMessage parses an incoming viewer message into its typed form.
// Unknown or undecodable payloads return an error; the caller logs and drops
// them without closing the connection.
func DecodeMessage(data []byte) (interface{}, error) {
	var base baseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON payload: %w", err)
	}

	switch base.Type {
	case MessageTypeObjectPositions:
		var msg ObjectPositionsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid object-positions message: %w", err)
		}
		return &msg, nil
	case "":
		return nil, fmt.Errorf("message missing type field")
	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}
