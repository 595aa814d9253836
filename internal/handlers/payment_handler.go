package handlers

import (
	"net/http"

	"prediction-wallet-service/internal/middleware"
	"prediction-wallet-service/internal/services"
	"prediction-wallet-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	Payments *services.PaymentService
	Payouts  *services.PayoutService
}

func NewPaymentHandler(payments *services.PaymentService, payouts *services.PayoutService) *PaymentHandler {
	return &PaymentHandler{Payments: payments, Payouts: payouts}
}

type InitiateDepositRequest struct {
	PaintingID string  `json:"paintingId" binding:"required"`
	Amount     float64 `json:"amount" binding:"required"`
}

func (h *PaymentHandler) InitiateDeposit(c *gin.Context) {
	var req InitiateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	account := middleware.CurrentAccount(c)
	result, err := h.Payments.InitiateDeposit(c.Request.Context(), account, services.InitiateDepositDTO{
		PaintingID: req.PaintingID,
		AmountInr:  req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(result, "payment initiated"))
}

type RequestPayoutRequest struct {
	Amount             float64 `json:"amount" binding:"required"`
	BeneficiaryName    string  `json:"beneficiaryName" binding:"required"`
	BeneficiaryAccount string  `json:"beneficiaryAccount" binding:"required"`
	BeneficiaryIFSC    string  `json:"beneficiaryIfsc" binding:"required"`
}

func (h *PaymentHandler) RequestPayout(c *gin.Context) {
	var req RequestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	account := middleware.CurrentAccount(c)
	result, err := h.Payouts.RequestPayout(c.Request.Context(), account, services.RequestPayoutDTO{
		Amount:             req.Amount,
		BeneficiaryName:    req.BeneficiaryName,
		BeneficiaryAccount: req.BeneficiaryAccount,
		BeneficiaryIFSC:    req.BeneficiaryIFSC,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(result, "payout submitted"))
}

func (h *PaymentHandler) ListPayouts(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	payouts, err := h.Payouts.ListPayouts(services.ListPayoutsDTO{
		AccountID: account.ID,
		Status:    c.Query("status"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, payouts, "success")
}
