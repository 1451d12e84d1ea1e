// Package llmproxy exposes the upstream chat completion endpoint through the
// playground so raw payloads pass the same request policy and trace log.
package llmproxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/gogo/playground/internal/adapter/llm"
	"github.com/xiaot623/gogo/playground/internal/domain"
	"github.com/xiaot623/gogo/playground/internal/service"
)

// Handler handles LLM proxy HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new LLM proxy handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers LLM proxy routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST(domain.EndpointChatCompletions, h.ChatCompletions)
}

// ChatCompletions relays a chat completion request upstream.
// POST /pg/chat/completions
func (h *Handler) ChatCompletions(c echo.Context) error {
	ctx := c.Request().Context()

	// Session for trace correlation
	sessionID := c.Request().Header.Get("x-session-id")

	var payload domain.Payload
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil || payload == nil {
		return c.JSON(http.StatusBadRequest, llm.ErrorResponse{
			Error: &llm.APIError{
				Message: "invalid request body",
				Type:    "invalid_request_error",
			},
		})
	}

	if stream, _ := payload["stream"].(bool); stream {
		return h.handleStreamingRequest(c, ctx, sessionID, payload)
	}

	return h.handleNonStreamingRequest(c, ctx, sessionID, payload)
}

// handleNonStreamingRequest handles non-streaming chat completion requests.
func (h *Handler) handleNonStreamingRequest(c echo.Context, ctx context.Context, sessionID string, payload domain.Payload) error {
	_, raw, err := h.service.ProxyChatCompletion(ctx, sessionID, payload)
	if err != nil {
		return writeUpstreamError(c, err)
	}

	return c.JSONBlob(http.StatusOK, raw)
}

// handleStreamingRequest handles streaming chat completion requests.
func (h *Handler) handleStreamingRequest(c echo.Context, ctx context.Context, sessionID string, payload domain.Payload) error {
	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.JSON(http.StatusInternalServerError, llm.ErrorResponse{
			Error: &llm.APIError{
				Message: "streaming not supported",
				Type:    "internal_error",
			},
		})
	}

	started := false
	err := h.service.ProxyChatCompletionStream(ctx, sessionID, payload, func(chunk *llm.StreamChunk) error {
		if !started {
			started = true
			c.Response().Header().Set("Content-Type", "text/event-stream")
			c.Response().Header().Set("Cache-Control", "no-cache")
			c.Response().Header().Set("Connection", "keep-alive")
			c.Response().WriteHeader(http.StatusOK)
		}

		// Forward the upstream chunk as received
		if _, err := fmt.Fprintf(c.Response().Writer, "data: %s\n\n", chunk.Raw); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})

	if !started {
		if err != nil {
			return writeUpstreamError(c, err)
		}
		c.Response().Header().Set("Content-Type", "text/event-stream")
		c.Response().WriteHeader(http.StatusOK)
	}

	fmt.Fprintf(c.Response().Writer, "data: [DONE]\n\n")
	flusher.Flush()

	if err != nil {
		// The status line is already written
		log.Printf("ERROR: proxied streaming request failed: %v", err)
	}

	return nil
}

func writeUpstreamError(c echo.Context, err error) error {
	info := domain.Describe(err)
	status := http.StatusBadGateway
	errType := "upstream_error"
	var apiErr *domain.APIError
	switch {
	case info.Code == domain.ErrorCodePolicy:
		status = http.StatusUnprocessableEntity
		errType = "policy_error"
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400:
		status = apiErr.StatusCode
	}
	return c.JSON(status, llm.ErrorResponse{
		Error: &llm.APIError{
			Message: info.Description(),
			Type:    errType,
			Code:    info.Code,
		},
	})
}
