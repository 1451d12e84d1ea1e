// Package v1 provides the HTTP handlers of the playground API.
package v1

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/gogo/playground/internal/domain"
	"github.com/xiaot623/gogo/playground/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers the playground routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	s := e.Group("/v1/sessions/:session_id")

	// Request configuration
	s.GET("/config", h.GetConfig)
	s.PUT("/config", h.UpdateConfig)
	s.PUT("/config/parameters/:name", h.SetParameterEnabled)
	s.POST("/config/reset", h.ResetConfig)

	// Message log
	s.GET("/messages", h.ListMessages)
	s.POST("/messages", h.SendMessage)
	s.DELETE("/messages", h.ClearMessages)
	s.POST("/messages/abort", h.AbortMessage)
	s.POST("/messages/reset", h.ResetMessages)
	s.DELETE("/messages/:message_id", h.DeleteMessage)
	s.POST("/messages/:message_id/toggle-reasoning", h.ToggleReasoning)

	// Debug panel
	s.GET("/debug", h.GetDebug)
	s.PUT("/debug/tab", h.SelectDebugTab)
	s.GET("/preview", h.GetPreview)

	s.GET("/events", h.GetEvents)

	// Upstream catalogue
	e.GET("/v1/models", h.ListModels)
	e.GET("/v1/groups", h.ListGroups)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// writeError renders err as an ErrorInfo body with a matching status code.
func writeError(c echo.Context, err error) error {
	info := domain.Describe(err)
	status := statusFor(info.Code)
	if status == http.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(status, map[string]interface{}{"error": info})
}

func statusFor(code string) int {
	switch code {
	case domain.ErrorCodeRequestInProgress, domain.ErrorCodeInvalidTransition, domain.ErrorCodeDuplicateID:
		return http.StatusConflict
	case domain.ErrorCodeNotFound:
		return http.StatusNotFound
	case domain.ErrorCodeJSONParse, domain.ErrorCodeInvalidTab, domain.ErrorCodeInvalidParameter,
		domain.ErrorCodeNoTextContent, domain.ErrorCodeInvalidMessageType:
		return http.StatusBadRequest
	case domain.ErrorCodePolicy:
		return http.StatusUnprocessableEntity
	case domain.ErrorCodeAPIRequest, domain.ErrorCodeNetwork:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]interface{}{
		"error": domain.ErrorInfo{Code: "invalid_request", Message: msg},
	})
}
