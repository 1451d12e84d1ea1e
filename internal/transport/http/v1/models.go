package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListModels returns the models offered by the upstream gateway.
// GET /v1/models
func (h *Handler) ListModels(c echo.Context) error {
	models, err := h.service.ListModels(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"models": models,
	})
}

// ListGroups returns the user groups offered by the upstream gateway.
// GET /v1/groups
func (h *Handler) ListGroups(c echo.Context) error {
	groups, err := h.service.ListGroups(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"groups": groups,
	})
}
