package handlers

import (
	"net/http"
	"strconv"

	"prediction-wallet-service/internal/middleware"
	"prediction-wallet-service/internal/services"
	"prediction-wallet-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type WagerHandler struct {
	Wagers *services.WagerService
}

func NewWagerHandler(wagers *services.WagerService) *WagerHandler {
	return &WagerHandler{Wagers: wagers}
}

type PlaceWagerRequest struct {
	MarketID  string  `json:"marketId" binding:"required"`
	Selection string  `json:"selection" binding:"required"`
	Stake     float64 `json:"stake" binding:"required"`
}

func (h *WagerHandler) PlaceWager(c *gin.Context) {
	var req PlaceWagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	account := middleware.CurrentAccount(c)
	wager, err := h.Wagers.PlaceWager(c.Request.Context(), account, services.PlaceWagerDTO{
		MarketID:  req.MarketID,
		Selection: req.Selection,
		Stake:     req.Stake,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(wager, "wager placed"))
}

func (h *WagerHandler) ListWagers(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	result, err := h.Wagers.ListWagers(services.ListWagersDTO{
		AccountID: account.ID,
		Status:    c.Query("status"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(result, result.Message))
}

func (h *WagerHandler) ListMarkets(c *gin.Context) {
	markets, err := h.Wagers.ListMarkets(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, markets, "success")
}
