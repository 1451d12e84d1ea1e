package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// SelectDebugTabRequest is the body of SelectDebugTab.
type SelectDebugTabRequest struct {
	Tab string `json:"tab"`
}

// GetDebug returns the debug panel views.
// GET /v1/sessions/:session_id/debug
func (h *Handler) GetDebug(c echo.Context) error {
	view, err := h.service.DebugState(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// SelectDebugTab switches the active debug tab.
// PUT /v1/sessions/:session_id/debug/tab
func (h *Handler) SelectDebugTab(c echo.Context) error {
	var req SelectDebugTabRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	view, err := h.service.SelectDebugTab(c.Request().Context(), c.Param("session_id"), req.Tab)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// GetPreview returns the payload the next request would send.
// GET /v1/sessions/:session_id/preview
func (h *Handler) GetPreview(c echo.Context) error {
	preview, err := h.service.Preview(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSONBlob(http.StatusOK, preview)
}

// GetEvents retrieves the trace events of a session.
// GET /v1/sessions/:session_id/events
func (h *Handler) GetEvents(c echo.Context) error {
	limit := 100
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}
	afterTs := int64(0)
	if t := c.QueryParam("after_ts"); t != "" {
		if val, err := strconv.ParseInt(t, 10, 64); err == nil {
			afterTs = val
		}
	}
	var types []string
	if t := c.QueryParam("types"); t != "" {
		types = strings.Split(t, ",")
	}

	events, err := h.service.GetEvents(c.Request().Context(), c.Param("session_id"), afterTs, types, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"events": events,
	})
}
