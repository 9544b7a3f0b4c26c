package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
	"tally/internal/services"
)

// ImportHandler handles batch transaction imports for pipeline operators.
type ImportHandler struct {
	importService services.ImportServicer
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importService services.ImportServicer) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// ImportRowRequest is one transaction row in an import batch.
type ImportRowRequest struct {
	AccountID  string    `json:"account_id" binding:"required,uuid"`
	CategoryID string    `json:"category_id" binding:"required,uuid"`
	MerchantID string    `json:"merchant_id" binding:"required,uuid"`
	Amount     int64     `json:"amount"`
	Date       time.Time `json:"date"`
	Notes      string    `json:"notes" binding:"max=1000"`
}

// ImportRequest represents a batch import payload.
type ImportRequest struct {
	TeamID string             `json:"team_id" binding:"required,uuid"`
	Rows   []ImportRowRequest `json:"rows" binding:"required,min=1,max=1000,dive"`
}

// Run ingests a batch of transactions
// @Summary     Import a transaction batch
// @Description Create transactions through the write pipeline; rows stay locked against edits until the batch completes
// @Tags        import
// @Accept      json
// @Produce     json
// @Security    PipelineKey
// @Param       request body ImportRequest true "Batch payload"
// @Success     201 {object} services.ImportResult "Import completed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Referenced entity not found"
// @Router      /pipeline/import [post]
func (h *ImportHandler) Run(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rows := make([]services.ImportRow, len(req.Rows))
	for i, r := range req.Rows {
		rows[i] = services.ImportRow(r)
	}

	result, err := h.importService.Run(req.TeamID, rows)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"result": result})
}
