package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SendMessageRequest is the body of SendMessage.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessageResponse identifies the messages created by SendMessage.
type SendMessageResponse struct {
	UserMessageID      string `json:"user_message_id"`
	AssistantMessageID string `json:"assistant_message_id"`
}

// ListMessages returns the message log of a session.
// GET /v1/sessions/:session_id/messages
func (h *Handler) ListMessages(c echo.Context) error {
	messages, err := h.service.ListMessages(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
	})
}

// SendMessage submits a user message. The reply streams in the background
// and is delivered over the session websocket.
// POST /v1/sessions/:session_id/messages
func (h *Handler) SendMessage(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	x, err := h.service.SendMessage(c.Request().Context(), c.Param("session_id"), req.Content)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, SendMessageResponse{
		UserMessageID:      x.UserMessageID,
		AssistantMessageID: x.AssistantMessageID,
	})
}

// AbortMessage cancels the reply being streamed.
// POST /v1/sessions/:session_id/messages/abort
func (h *Handler) AbortMessage(c echo.Context) error {
	msg, err := h.service.AbortMessage(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, msg)
}

// DeleteMessage removes one message.
// DELETE /v1/sessions/:session_id/messages/:message_id
func (h *Handler) DeleteMessage(c echo.Context) error {
	if err := h.service.DeleteMessage(c.Request().Context(), c.Param("session_id"), c.Param("message_id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleReasoning expands or collapses a message's reasoning.
// POST /v1/sessions/:session_id/messages/:message_id/toggle-reasoning
func (h *Handler) ToggleReasoning(c echo.Context) error {
	msg, err := h.service.ToggleReasoning(c.Request().Context(), c.Param("session_id"), c.Param("message_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, msg)
}

// ResetMessages restores the default conversation.
// POST /v1/sessions/:session_id/messages/reset
func (h *Handler) ResetMessages(c echo.Context) error {
	messages, err := h.service.ResetMessages(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
	})
}

// ClearMessages empties the message log.
// DELETE /v1/sessions/:session_id/messages
func (h *Handler) ClearMessages(c echo.Context) error {
	if err := h.service.ClearMessages(c.Request().Context(), c.Param("session_id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
