package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
	"tally/internal/pagination"
	"tally/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a
// transaction. Amount is in minor currency units; positive is income,
// negative is an outcome.
type CreateTransactionRequest struct {
	AccountID  string    `json:"account_id" binding:"required,uuid"`
	CategoryID string    `json:"category_id" binding:"required,uuid"`
	MerchantID string    `json:"merchant_id" binding:"required,uuid"`
	Amount     int64     `json:"amount"`
	Date       time.Time `json:"date"`
	Notes      string    `json:"notes" binding:"max=1000"`
	TagIDs     []string  `json:"tag_ids" binding:"omitempty,dive,uuid"`
}

// UpdateTransactionRequest represents the request payload for updating a
// transaction. Absent fields keep their current value; explicit zero values
// are applied.
type UpdateTransactionRequest struct {
	AccountID  *string    `json:"account_id" binding:"omitempty,uuid"`
	CategoryID *string    `json:"category_id" binding:"omitempty,uuid"`
	MerchantID *string    `json:"merchant_id" binding:"omitempty,uuid"`
	Amount     *int64     `json:"amount"`
	Date       *time.Time `json:"date"`
	Notes      *string    `json:"notes" binding:"omitempty,max=1000"`
	TagIDs     []string   `json:"tag_ids" binding:"omitempty,dive,uuid"`
}

// TransactionFilterRequest represents the query parameters for listing
// transactions.
type TransactionFilterRequest struct {
	pagination.PageRequest
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	AccountID  *string    `form:"account_id" binding:"omitempty,uuid"`
	CategoryID *string    `form:"category_id" binding:"omitempty,uuid"`
	MerchantID *string    `form:"merchant_id" binding:"omitempty,uuid"`
	MinAmount  *int64     `form:"min_amount"`
	MaxAmount  *int64     `form:"max_amount"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record a transaction; account, category and merchant balances are updated atomically with the write
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} map[string]interface{} "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Referenced entity not found"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	txn, err := h.transactionService.CreateTransaction(teamID, services.TransactionInput{
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		MerchantID: req.MerchantID,
		Amount:     req.Amount,
		Date:       req.Date,
		Notes:      req.Notes,
		TagIDs:     req.TagIDs,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(teamID, userID, "CREATE_TRANSACTION", "transaction", txn.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "account_id": req.AccountID})

	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}

// ListTransactions returns the team's transactions
// @Summary     List transactions
// @Description Get a paginated, filtered list of the team's transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       from query string false "Earliest date (YYYY-MM-DD)"
// @Param       to query string false "Latest date (YYYY-MM-DD)"
// @Param       account_id query string false "Filter by account"
// @Param       category_id query string false "Filter by category"
// @Param       merchant_id query string false "Filter by merchant"
// @Success     200 {object} map[string]interface{} "Transactions"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.TransactionFilter{
		FromDate:   req.From,
		ToDate:     req.To,
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		MerchantID: req.MerchantID,
		MinAmount:  req.MinAmount,
		MaxAmount:  req.MaxAmount,
	}

	transactions, err := h.transactionService.GetTeamTransactions(teamID, req.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// GetTransaction returns a single transaction
// @Summary     Get a transaction
// @Description Get one transaction by ID, with its tags
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]interface{} "Transaction"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.transactionService.GetTransactionByID(teamID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// UpdateTransaction updates a transaction
// @Summary     Update a transaction
// @Description Update a transaction's fields; balance counters follow the change atomically. Returns 409 while a batch import holds the row.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} map[string]interface{} "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Transaction is being processed"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	txn, err := h.transactionService.UpdateTransaction(teamID, transactionID, services.TransactionUpdateFields{
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		MerchantID: req.MerchantID,
		Amount:     req.Amount,
		Date:       req.Date,
		Notes:      req.Notes,
		TagIDs:     req.TagIDs,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(teamID, userID, "UPDATE_TRANSACTION", "transaction", txn.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// DeleteTransaction removes a transaction
// @Summary     Delete a transaction
// @Description Delete a transaction; its contribution is removed from all balance counters
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     204 "Transaction deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(teamID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(teamID, userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
