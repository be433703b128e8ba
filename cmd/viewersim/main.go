// Command viewersim is a headless stand-in for a 3D viewer. It connects to
// the server, tracks every load-object instruction, and answers position
// requests with the tracked set, which makes it useful for exercising the
// full placement loop without a real client.
package main

import (
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mvanryn/worldweaver/domain/entities"
	ws "github.com/mvanryn/worldweaver/internal/websocket"
)

func main() {
	addr := flag.String("addr", "ws://localhost:8765/ws", "server WebSocket URL")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	conn, _, err := websocket.DefaultDialer.Dial(*addr, nil)
	if err != nil {
		logger.Fatal("failed to connect", zap.String("addr", *addr), zap.Error(err))
	}
	defer conn.Close()
	logger.Info("connected", zap.String("addr", *addr))

	objects := map[string]entities.ObjectState{}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				logger.Info("connection closed", zap.Error(err))
				return
			}
			handleMessage(conn, payload, objects, logger)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	case <-done:
	}
}

func handleMessage(conn *websocket.Conn, payload []byte, objects map[string]entities.ObjectState, logger *zap.Logger) {
	var base struct {
		Type ws.MessageType `json:"type"`
	}
	if err := json.Unmarshal(payload, &base); err != nil {
		logger.Warn("undecodable message", zap.Error(err))
		return
	}

	switch base.Type {
	case ws.MessageTypeLoadObject:
		var msg ws.LoadObjectMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			logger.Warn("invalid load-object message", zap.Error(err))
			return
		}
		objects[msg.ID] = entities.ObjectState{Position: msg.Position}
		logger.Info("loaded object",
			zap.String("id", msg.ID),
			zap.String("path", msg.Path),
			zap.Float64("x", msg.Position.X),
			zap.Float64("z", msg.Position.Z))

	case ws.MessageTypeGetObjectPositions:
		var msg ws.PositionRequestMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			logger.Warn("invalid position request", zap.Error(err))
			return
		}
		reply := ws.ObjectPositionsMessage{
			Type:      ws.MessageTypeObjectPositions,
			RequestID: msg.RequestID,
			Objects:   objects,
		}
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("failed to send position report", zap.Error(err))
			return
		}
		logger.Info("reported positions",
			zap.String("requestId", msg.RequestID),
			zap.Int("objects", len(objects)))

	default:
		logger.Debug("ignoring message", zap.String("type", string(base.Type)))
	}
}
