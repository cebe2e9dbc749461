package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	portssvc "github.com/snapexpense/snap_expense_app/internal/core/ports/services"
	"github.com/snapexpense/snap_expense_app/internal/dto"
	"github.com/snapexpense/snap_expense_app/internal/middleware"
)

// exportHandler handles HTTP requests related to exports.
type exportHandler struct {
	exportService portssvc.ExportSvcFacade
	jobService    portssvc.JobQueueSvc
}

func newExportHandler(es portssvc.ExportSvcFacade, js portssvc.JobQueueSvc) *exportHandler {
	return &exportHandler{exportService: es, jobService: js}
}

// registerExportRoutes registers all export-related routes.
func registerExportRoutes(rg *gin.RouterGroup, exportService portssvc.ExportSvcFacade, jobService portssvc.JobQueueSvc) {
	h := newExportHandler(exportService, jobService)

	exports := rg.Group("/exports")
	{
		exports.POST("", h.createExport)
		exports.GET("", h.listExports)
		exports.GET("/:id", h.getExport)
	}
}

// createExport godoc
// @Summary Request an export of a batch or set of projects
// @Description Creates an export record and queues its materialization, or
// @Description runs it inline when sync is set. A pending or running export
// @Description for the same batch and type is reused.
// @Tags exports
// @Accept json
// @Produce json
// @Param export body dto.CreateExportRequest true "Export request"
// @Success 201 {object} dto.ExportResponse
// @Success 200 {object} dto.ExportResponse "Existing export reused"
// @Security BearerAuth
// @Router /exports [post]
func (h *exportHandler) createExport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	record, reused, err := h.exportService.RequestExport(c.Request.Context(), req, userID)
	if err != nil {
		logger.Error("Failed to request export", slog.String("error", err.Error()))
		respondServiceError(c, err, "Failed to request export")
		return
	}
	if reused {
		res := dto.ToExportResponse(record)
		res.Reused = true
		c.JSON(http.StatusOK, res)
		return
	}

	if req.Sync {
		// Run inline; errors surface through the record's status, not the
		// HTTP response, so sync and queued behave identically to pollers.
		_ = h.exportService.Run(c.Request.Context(), record.ExportID, userID)
		refreshed, err := h.exportService.GetExportByID(c.Request.Context(), record.ExportID, userID)
		if err != nil {
			respondServiceError(c, err, "Failed to retrieve export")
			return
		}
		c.JSON(http.StatusCreated, dto.ToExportResponse(refreshed))
		return
	}

	if _, err := h.jobService.Enqueue(c.Request.Context(), domain.JobTypeExport, domain.JobPayload{
		ExportID: record.ExportID,
		UserID:   userID,
	}); err != nil {
		logger.Error("Failed to enqueue export", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue export"})
		return
	}
	c.JSON(http.StatusCreated, dto.ToExportResponse(record))
}

func (h *exportHandler) listExports(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	records, err := h.exportService.ListExports(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list exports")
		return
	}
	c.JSON(http.StatusOK, dto.ToListExportResponse(records))
}

func (h *exportHandler) getExport(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	record, err := h.exportService.GetExportByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve export")
		return
	}
	c.JSON(http.StatusOK, dto.ToExportResponse(record))
}
