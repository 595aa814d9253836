package handlers

import (
	"net/http"
	"strconv"

	"prediction-wallet-service/internal/services"
	"prediction-wallet-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	Admin       *services.AdminService
	Consistency *services.ConsistencyService
}

func NewAdminHandler(admin *services.AdminService, consistency *services.ConsistencyService) *AdminHandler {
	return &AdminHandler{Admin: admin, Consistency: consistency}
}

type AdjustmentRequest struct {
	AccountID   uint    `json:"accountId" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description"`
}

func (h *AdminHandler) Adjust(c *gin.Context) {
	var req AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	entry, err := h.Admin.Adjust(c.Request.Context(), services.AdjustmentDTO{
		AccountID:   req.AccountID,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(entry, "adjustment applied"))
}

// CheckConsistency runs the derived-vs-snapshot balance audit on demand.
func (h *AdminHandler) CheckConsistency(c *gin.Context) {
	drifted, err := h.Consistency.CheckBalances(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"driftedAccounts": drifted}, "consistency check complete")
}

// ExpirePayments sweeps stale PENDING payins, optionally overriding the
// configured TTL with a ?minutes= query parameter.
func (h *AdminHandler) ExpirePayments(c *gin.Context) {
	minutes, _ := strconv.Atoi(c.DefaultQuery("minutes", "0"))
	expired, err := h.Consistency.ExpirePayments(minutes)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"expired": expired}, "expiry sweep complete")
}
