package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/services"
)

type reconciliationURI struct {
	Kind string `uri:"kind" binding:"required,parent_kind"`
}

func bindParentKind(c *gin.Context) (models.ParentKind, error) {
	var uri reconciliationURI
	if err := c.ShouldBindUri(&uri); err != nil {
		return "", apperrors.WithMessage(apperrors.ErrUnknownParentKind, "unknown parent kind: "+c.Param("kind"))
	}
	return models.ParentKind(uri.Kind), nil
}

// ReconciliationHandler exposes the aggregate balance views and drift
// detection to pipeline operators.
type ReconciliationHandler struct {
	reconciliationService services.ReconciliationServicer
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationService services.ReconciliationServicer) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationService: reconciliationService}
}

// Refresh rebuilds the aggregate view for one parent kind
// @Summary     Refresh an aggregate balance view
// @Description Recompute per-parent income/outcome/net totals from the transaction table and swap the snapshot atomically
// @Tags        reconciliation
// @Produce     json
// @Security    PipelineKey
// @Param       kind path string true "Parent kind" Enums(account, category, merchant)
// @Success     200 {object} map[string]interface{} "Refresh completed"
// @Failure     400 {object} ErrorResponse "Unknown parent kind"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/reconciliation/{kind}/refresh [post]
func (h *ReconciliationHandler) Refresh(c *gin.Context) {
	kind, err := bindParentKind(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.reconciliationService.Refresh(kind); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "refreshed", "kind": kind})
}

// Lookup returns the snapshot row for one parent
// @Summary     Look up a balance snapshot
// @Description Get the latest reconciled totals for one parent; 404 if the parent had no transactions at the last refresh
// @Tags        reconciliation
// @Produce     json
// @Security    PipelineKey
// @Param       kind path string true "Parent kind" Enums(account, category, merchant)
// @Param       id path string true "Parent ID"
// @Success     200 {object} services.BalanceSnapshot "Snapshot"
// @Failure     404 {object} ErrorResponse "No snapshot for this parent"
// @Router      /pipeline/reconciliation/{kind}/{id} [get]
func (h *ReconciliationHandler) Lookup(c *gin.Context) {
	kind, err := bindParentKind(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	parentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	snapshot, err := h.reconciliationService.Lookup(kind, parentID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": snapshot})
}

// Drift reports counters that disagree with the latest snapshot
// @Summary     Detect balance drift
// @Description Compare the denormalized counters against the latest snapshot and report every mismatch; nothing is corrected
// @Tags        reconciliation
// @Produce     json
// @Security    PipelineKey
// @Param       kind path string true "Parent kind" Enums(account, category, merchant)
// @Success     200 {object} map[string]interface{} "Drift report"
// @Failure     400 {object} ErrorResponse "Unknown parent kind"
// @Router      /pipeline/reconciliation/{kind}/drift [get]
func (h *ReconciliationHandler) Drift(c *gin.Context) {
	kind, err := bindParentKind(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	drifts, err := h.reconciliationService.FindDrift(kind)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if drifts == nil {
		drifts = []services.Drift{}
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "drift": drifts})
}
