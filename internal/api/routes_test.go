package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mvanryn/worldweaver/internal/websocket"
	"github.com/mvanryn/worldweaver/internal/world"
)

type stubAssets struct {
	healthErr error
}

func (s *stubAssets) GenerateFromText(ctx context.Context, prompt string, seed int) (string, error) {
	return "models/stub.glb", nil
}

func (s *stubAssets) Health(ctx context.Context) error {
	return s.healthErr
}

func TestHealthEndpoint(t *testing.T) {
	logger := zaptest.NewLogger(t)
	hub := websocket.NewHub(world.NewCache(), logger)
	go hub.Run()

	e := echo.New()
	InitRoutes(e, hub, &stubAssets{}, logger)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "worldweaver", resp.Service)
	require.Equal(t, 0, resp.Connections)
	require.Equal(t, "ok", resp.AssetStatus)
}

func TestHealthEndpoint_AssetServiceDown(t *testing.T) {
	logger := zaptest.NewLogger(t)
	hub := websocket.NewHub(world.NewCache(), logger)
	go hub.Run()

	e := echo.New()
	InitRoutes(e, hub, &stubAssets{healthErr: errors.New("connection refused")}, logger)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "unreachable", resp.AssetStatus)
}
