package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
	"tally/internal/pagination"
	"tally/internal/services"
)

// MerchantHandler handles merchant-related requests.
type MerchantHandler struct {
	merchantService services.MerchantServicer
	auditService    services.AuditServicer
}

// NewMerchantHandler creates a new MerchantHandler.
func NewMerchantHandler(merchantService services.MerchantServicer, auditService services.AuditServicer) *MerchantHandler {
	return &MerchantHandler{merchantService: merchantService, auditService: auditService}
}

// MerchantRequest represents the request payload for creating or updating a merchant.
type MerchantRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CreateMerchant handles the creation of a new merchant
// @Summary     Create a merchant
// @Description Create a new merchant for the authenticated team
// @Tags        merchants
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body MerchantRequest true "Merchant details"
// @Success     201 {object} map[string]interface{} "Merchant created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /merchants [post]
func (h *MerchantHandler) CreateMerchant(c *gin.Context) {
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

	var req MerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	merchant, err := h.merchantService.CreateMerchant(teamID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(teamID, userID, "CREATE_MERCHANT", "merchant", merchant.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"merchant": merchant})
}

// ListMerchants returns the team's merchants
// @Summary     List merchants
// @Description Get a paginated list of the team's merchants
// @Tags        merchants
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} map[string]interface{} "Merchants"
// @Router      /merchants [get]
func (h *MerchantHandler) ListMerchants(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	merchants, err := h.merchantService.GetTeamMerchants(teamID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, merchants)
}

// GetMerchant returns a single merchant
// @Summary     Get a merchant
// @Description Get one merchant by ID
// @Tags        merchants
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Merchant ID"
// @Success     200 {object} map[string]interface{} "Merchant"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /merchants/{id} [get]
func (h *MerchantHandler) GetMerchant(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	merchantID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	merchant, err := h.merchantService.GetMerchantByID(teamID, merchantID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"merchant": merchant})
}

// UpdateMerchant updates a merchant
// @Summary     Update a merchant
// @Description Update a merchant's name
// @Tags        merchants
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Merchant ID"
// @Param       request body MerchantRequest true "Fields to update"
// @Success     200 {object} map[string]interface{} "Merchant updated"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /merchants/{id} [put]
func (h *MerchantHandler) UpdateMerchant(c *gin.Context) {
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
	merchantID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	merchant, err := h.merchantService.UpdateMerchant(teamID, merchantID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(teamID, userID, "UPDATE_MERCHANT", "merchant", merchant.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusOK, gin.H{"merchant": merchant})
}

// DeleteMerchant removes a merchant and its transactions
// @Summary     Delete a merchant
// @Description Delete a merchant together with all its transactions
// @Tags        merchants
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Merchant ID"
// @Success     204 "Merchant deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /merchants/{id} [delete]
func (h *MerchantHandler) DeleteMerchant(c *gin.Context) {
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
	merchantID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.merchantService.DeleteMerchant(teamID, merchantID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(teamID, userID, "DELETE_MERCHANT", "merchant", merchantID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
