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

// batchHandler handles HTTP requests related to batches.
type batchHandler struct {
	batchService portssvc.BatchSvcFacade
	jobService   portssvc.JobQueueSvc
}

func newBatchHandler(bs portssvc.BatchSvcFacade, js portssvc.JobQueueSvc) *batchHandler {
	return &batchHandler{batchService: bs, jobService: js}
}

// registerBatchRoutes registers all batch-related routes.
func registerBatchRoutes(rg *gin.RouterGroup, batchService portssvc.BatchSvcFacade, jobService portssvc.JobQueueSvc) {
	h := newBatchHandler(batchService, jobService)

	batches := rg.Group("/batches")
	{
		batches.POST("", h.createBatch)
		batches.GET("", h.listBatches)
		batches.GET("/:id", h.getBatch)
		batches.PUT("/:id", h.updateBatch)
		batches.DELETE("/:id", h.deleteBatch)
		batches.GET("/:id/issues", h.listIssues)
		batches.POST("/:id/check", h.requestCheck)
	}
}

func (h *batchHandler) createBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	batch, err := h.batchService.CreateBatch(c.Request.Context(), req, userID)
	if err != nil {
		logger.Error("Failed to create batch", slog.String("error", err.Error()))
		respondServiceError(c, err, "Failed to create batch")
		return
	}
	c.JSON(http.StatusCreated, dto.ToBatchResponse(batch))
}

func (h *batchHandler) listBatches(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	projectID := c.Query("projectID")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectID query parameter is required"})
		return
	}

	batches, err := h.batchService.ListBatches(c.Request.Context(), projectID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list batches")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBatchResponse(batches))
}

func (h *batchHandler) getBatch(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	batch, err := h.batchService.GetBatchByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve batch")
		return
	}
	c.JSON(http.StatusOK, dto.ToBatchResponse(batch))
}

func (h *batchHandler) updateBatch(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	batch, err := h.batchService.UpdateBatch(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to update batch")
		return
	}
	c.JSON(http.StatusOK, dto.ToBatchResponse(batch))
}

func (h *batchHandler) deleteBatch(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.batchService.DeleteBatch(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondServiceError(c, err, "Failed to delete batch")
		return
	}
	c.Status(http.StatusNoContent)
}

// listIssues godoc
// @Summary List the issues of the most recent consistency check
// @Tags batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {array} dto.BatchIssueResponse
// @Security BearerAuth
// @Router /batches/{id}/issues [get]
func (h *batchHandler) listIssues(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	issues, err := h.batchService.ListBatchIssues(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list issues")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBatchIssueResponse(issues))
}

// requestCheck godoc
// @Summary Queue a consistency check for a batch
// @Tags batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 202 {object} map[string]string
// @Security BearerAuth
// @Router /batches/{id}/check [post]
func (h *batchHandler) requestCheck(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	batchID := c.Param("id")
	// Ownership check happens here; the queued worker tolerates a batch
	// deleted between enqueue and execution.
	if _, err := h.batchService.GetBatchByID(c.Request.Context(), batchID, userID); err != nil {
		respondServiceError(c, err, "Failed to retrieve batch")
		return
	}

	jobID, err := h.jobService.Enqueue(c.Request.Context(), domain.JobTypeBatchCheck, domain.JobPayload{
		BatchID: batchID,
		UserID:  userID,
	})
	if err != nil {
		logger.Error("Failed to enqueue batch check", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue check"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"jobID": jobID})
}
