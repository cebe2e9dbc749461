package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/snapexpense/snap_expense_app/internal/core/ports/services"
	"github.com/snapexpense/snap_expense_app/internal/dto"
	"github.com/snapexpense/snap_expense_app/internal/middleware"
)

// settingsHandler exposes the per-user matching rules and export template.
type settingsHandler struct {
	userService portssvc.UserSvcFacade
}

func newSettingsHandler(us portssvc.UserSvcFacade) *settingsHandler {
	return &settingsHandler{userService: us}
}

// registerSettingsRoutes registers the settings routes.
func registerSettingsRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade) {
	h := newSettingsHandler(userService)

	settings := rg.Group("/settings")
	{
		settings.GET("", h.getSettings)
		settings.PUT("", h.updateSettings)
	}
}

// getSettings godoc
// @Summary Get the authenticated user's settings
// @Tags settings
// @Produce json
// @Success 200 {object} dto.SettingsResponse
// @Security BearerAuth
// @Router /settings [get]
func (h *settingsHandler) getSettings(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	settings, err := h.userService.GetSettings(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve settings")
		return
	}
	c.JSON(http.StatusOK, dto.ToSettingsResponse(settings))
}

// updateSettings godoc
// @Summary Update the authenticated user's settings
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body dto.UpdateSettingsRequest true "Settings fields to change"
// @Success 200 {object} dto.SettingsResponse
// @Security BearerAuth
// @Router /settings [put]
func (h *settingsHandler) updateSettings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	settings, err := h.userService.UpdateSettings(c.Request.Context(), userID, req)
	if err != nil {
		logger.Error("Failed to update settings", slog.String("error", err.Error()))
		respondServiceError(c, err, "Failed to update settings")
		return
	}
	c.JSON(http.StatusOK, dto.ToSettingsResponse(settings))
}
