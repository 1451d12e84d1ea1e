package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/gogo/playground/internal/domain"
)

// GetConfig returns the request configuration of a session.
// GET /v1/sessions/:session_id/config
func (h *Handler) GetConfig(c echo.Context) error {
	cfg, err := h.service.GetConfig(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cfg)
}

// UpdateConfig replaces the request configuration of a session.
// PUT /v1/sessions/:session_id/config
func (h *Handler) UpdateConfig(c echo.Context) error {
	var cfg domain.RequestConfig
	if err := c.Bind(&cfg); err != nil {
		return badRequest(c, "invalid request body")
	}

	updated, err := h.service.UpdateConfig(c.Request().Context(), c.Param("session_id"), cfg)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// SetParameterEnabledRequest is the body of SetParameterEnabled.
type SetParameterEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// SetParameterEnabled toggles whether a tunable parameter is sent.
// PUT /v1/sessions/:session_id/config/parameters/:name
func (h *Handler) SetParameterEnabled(c echo.Context) error {
	var req SetParameterEnabledRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	cfg, err := h.service.SetParameterEnabled(c.Request().Context(), c.Param("session_id"), c.Param("name"), req.Enabled)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cfg)
}

// ResetConfig restores the default configuration.
// POST /v1/sessions/:session_id/config/reset
func (h *Handler) ResetConfig(c echo.Context) error {
	cfg, err := h.service.ResetConfig(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cfg)
}
