package handlers

import (
	"net/http"
	"strconv"

	"prediction-wallet-service/internal/middleware"
	"prediction-wallet-service/internal/services"
	"prediction-wallet-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	Balance *services.BalanceService
}

func NewWalletHandler(balance *services.BalanceService) *WalletHandler {
	return &WalletHandler{Balance: balance}
}

func (h *WalletHandler) GetBalance(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	balance, err := h.Balance.GetBalance(c.Request.Context(), account.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"balance": balance}, "success")
}

func (h *WalletHandler) GetTransactions(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	result, err := h.Balance.ListEntries(services.ListEntriesDTO{
		AccountID: account.ID,
		Kind:      c.Query("kind"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(result, result.Message))
}

func (h *WalletHandler) GetSummary(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	summary, err := h.Balance.GetSummary(c.Request.Context(), account.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, summary, "success")
}
