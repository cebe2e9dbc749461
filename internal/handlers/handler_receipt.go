package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	portssvc "github.com/snapexpense/snap_expense_app/internal/core/ports/services"
	"github.com/snapexpense/snap_expense_app/internal/dto"
	"github.com/snapexpense/snap_expense_app/internal/middleware"
)

// maxReceiptSize caps an uploaded receipt file at 20 MiB.
const maxReceiptSize = 20 << 20

// receiptHandler handles HTTP requests related to receipts.
type receiptHandler struct {
	receiptService portssvc.ReceiptSvcFacade
}

func newReceiptHandler(rs portssvc.ReceiptSvcFacade) *receiptHandler {
	return &receiptHandler{receiptService: rs}
}

// registerReceiptRoutes registers all receipt-related routes.
func registerReceiptRoutes(rg *gin.RouterGroup, receiptService portssvc.ReceiptSvcFacade) {
	h := newReceiptHandler(receiptService)

	receipts := rg.Group("/receipts")
	{
		receipts.POST("", h.uploadReceipt)
		receipts.GET("", h.listReceipts)
		receipts.GET("/:id", h.getReceipt)
		receipts.DELETE("/:id", h.deleteReceipt)
		receipts.POST("/:id/match", h.matchReceipt)
		receipts.DELETE("/:id/match", h.unmatchReceipt)
		receipts.GET("/:id/suggestions", h.suggestMatches)
	}
}

// uploadReceipt godoc
// @Summary Upload a receipt file with its metadata
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt file"
// @Param projectID formData string true "Project ID"
// @Param amount formData string false "Receipt amount"
// @Param date formData string false "Receipt date (YYYY-MM-DD)"
// @Param type formData string false "Receipt category hint"
// @Success 201 {object} dto.ReceiptResponse
// @Security BearerAuth
// @Router /receipts [post]
func (h *receiptHandler) uploadReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Receipt file is required"})
		return
	}
	if fileHeader.Size > maxReceiptSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Receipt file too large"})
		return
	}

	req := dto.UploadReceiptRequest{
		ProjectID: c.PostForm("projectID"),
		FileName:  fileHeader.Filename,
		Type:      c.PostForm("type"),
	}
	if req.ProjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectID is required"})
		return
	}

	if amountStr := c.PostForm("amount"); amountStr != "" {
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount: " + amountStr})
			return
		}
		req.Amount = &amount
	}
	if dateStr := c.PostForm("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		req.Date = &date
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxReceiptSize))
	if err != nil {
		logger.Error("Failed to read uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	receipt, err := h.receiptService.UploadReceipt(c.Request.Context(), req, data, userID)
	if err != nil {
		logger.Error("Failed to upload receipt", slog.String("error", err.Error()))
		respondServiceError(c, err, "Failed to upload receipt")
		return
	}
	c.JSON(http.StatusCreated, dto.ToReceiptResponse(receipt))
}

func (h *receiptHandler) listReceipts(c *gin.Context) {
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

	receipts, err := h.receiptService.ListReceipts(c.Request.Context(), projectID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list receipts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListReceiptResponse(receipts))
}

func (h *receiptHandler) getReceipt(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	receipt, err := h.receiptService.GetReceiptByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve receipt")
		return
	}
	c.JSON(http.StatusOK, dto.ToReceiptResponse(receipt))
}

func (h *receiptHandler) deleteReceipt(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.receiptService.DeleteReceipt(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondServiceError(c, err, "Failed to delete receipt")
		return
	}
	c.Status(http.StatusNoContent)
}

// matchReceipt godoc
// @Summary Link a receipt to an expense
// @Tags receipts
// @Accept json
// @Produce json
// @Param id path string true "Receipt ID"
// @Param match body dto.MatchReceiptRequest true "Expense to link"
// @Success 204
// @Security BearerAuth
// @Router /receipts/{id}/match [post]
func (h *receiptHandler) matchReceipt(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.MatchReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.receiptService.MatchReceipt(c.Request.Context(), c.Param("id"), req.ExpenseID, userID); err != nil {
		respondServiceError(c, err, "Failed to match receipt")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *receiptHandler) unmatchReceipt(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.receiptService.UnmatchReceipt(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondServiceError(c, err, "Failed to unmatch receipt")
		return
	}
	c.Status(http.StatusNoContent)
}

// suggestMatches godoc
// @Summary Rank candidate expenses for a receipt
// @Tags receipts
// @Produce json
// @Param id path string true "Receipt ID"
// @Success 200 {array} dto.MatchCandidateResponse
// @Security BearerAuth
// @Router /receipts/{id}/suggestions [get]
func (h *receiptHandler) suggestMatches(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	candidates, err := h.receiptService.SuggestMatches(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to compute suggestions")
		return
	}
	c.JSON(http.StatusOK, dto.ToMatchCandidateResponses(candidates))
}
