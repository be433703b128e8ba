// Package api wires the HTTP surface: the health endpoint and the viewer
// WebSocket upgrade.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mvanryn/worldweaver/domain/repositories"
	"github.com/mvanryn/worldweaver/internal/websocket"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Connections int    `json:"connections"`
	AssetStatus string `json:"asset_service"`
}

// InitRoutes registers all HTTP routes on the echo instance.
func InitRoutes(e *echo.Echo, hub *websocket.Hub, assets repositories.AssetGenerator, logger *zap.Logger) {
	e.GET("/health", func(c echo.Context) error {
		assetStatus := "ok"
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := assets.Health(ctx); err != nil {
			logger.Warn("asset service health check failed", zap.Error(err))
			assetStatus = "unreachable"
		}

		return c.JSON(http.StatusOK, HealthResponse{
			Status:      "ok",
			Service:     "worldweaver",
			Connections: hub.ClientCount(),
			AssetStatus: assetStatus,
		})
	})

	e.GET("/ws", func(c echo.Context) error {
		return websocket.ServeWS(hub, c, logger)
	})
}
