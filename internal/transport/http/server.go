// Package http provides the HTTP server implementation for the playground.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/xiaot623/gogo/playground/internal/service"
	"github.com/xiaot623/gogo/playground/internal/transport/http/llmproxy"
	v1 "github.com/xiaot623/gogo/playground/internal/transport/http/v1"
	"github.com/xiaot623/gogo/playground/internal/transport/ws"
)

// NewServer creates and configures the playground HTTP server: the REST API,
// the upstream passthrough and the session websocket.
func NewServer(svc *service.Service, wsServer *ws.Server) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc)
	proxyHandler := llmproxy.NewHandler(svc)

	// Register Routes
	v1Handler.RegisterRoutes(e)
	proxyHandler.RegisterRoutes(e)
	if wsServer != nil {
		wsServer.RegisterRoutes(e)
	}

	return e
}
