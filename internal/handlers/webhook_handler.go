package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"prediction-wallet-service/internal/config"
	"prediction-wallet-service/internal/services"
	"prediction-wallet-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	Config     *config.Config
	Settlement *services.SettlementService
	Payments   *services.PaymentService
	Alerter    *services.Alerter
}

func NewWebhookHandler(cfg *config.Config, settlement *services.SettlementService, payments *services.PaymentService, alerter *services.Alerter) *WebhookHandler {
	return &WebhookHandler{
		Config:     cfg,
		Settlement: settlement,
		Payments:   payments,
		Alerter:    alerter,
	}
}

// HandleSettlement consumes the odds provider's market settlement callback.
// The signature is a hex HMAC over the raw body; when the header is absent
// the call is let through with a warning unless strict mode is on.
func (h *WebhookHandler) HandleSettlement(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("unreadable body", nil, http.StatusBadRequest))
		return
	}

	signature := c.GetHeader("X-Signature")
	if signature == "" {
		if h.Config.WebhookStrictSignature {
			h.Alerter.LogWebhook("settlement", "Settlement", "", string(body), "missing signature", http.StatusUnauthorized)
			c.JSON(http.StatusUnauthorized, common.NewErrorResponse("missing signature", nil, http.StatusUnauthorized))
			return
		}
		log.Printf("settlement webhook accepted without signature header")
	} else if !common.VerifyBodyHex(body, h.Config.SettlementSecret, signature) {
		h.Alerter.LogWebhook("settlement", "Settlement", "", string(body), "invalid signature", http.StatusUnauthorized)
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("invalid signature", nil, http.StatusUnauthorized))
		return
	}

	var event services.SettlementEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("malformed payload", nil, http.StatusBadRequest))
		return
	}

	summary, err := h.Settlement.ProcessSettlement(c.Request.Context(), event)
	if err != nil {
		h.Alerter.LogWebhook("settlement", "Settlement", event.MarketID, string(body), err.Error(), statusFor(err))
		respondError(c, err)
		return
	}

	h.Alerter.LogWebhook("settlement", "Settlement", event.MarketID, string(body), "processed", http.StatusOK)
	respondOK(c, summary, "settlement processed")
}

// HandleGateway consumes the payment gateway's payin status callback. The
// signature is a base64 HMAC over the key-sorted JSON body; a missing
// header is tolerated with a warning unless strict mode is on.
func (h *WebhookHandler) HandleGateway(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("unreadable body", nil, http.StatusBadRequest))
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("malformed payload", nil, http.StatusBadRequest))
		return
	}

	signature := c.GetHeader("X-Signature")
	if signature == "" {
		if h.Config.WebhookStrictSignature {
			h.Alerter.LogWebhook("gateway", "Payin", "", string(body), "missing signature", http.StatusUnauthorized)
			c.JSON(http.StatusUnauthorized, common.NewErrorResponse("missing signature", nil, http.StatusUnauthorized))
			return
		}
		log.Printf("gateway webhook accepted without signature header")
	} else if !common.VerifyCanonicalBase64(payload, h.Config.GatewayAPISecret, h.Config.GatewaySalt, signature) {
		h.Alerter.LogWebhook("gateway", "Payin", "", string(body), "invalid signature", http.StatusUnauthorized)
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("invalid signature", nil, http.StatusUnauthorized))
		return
	}

	var event services.GatewayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("malformed payload", nil, http.StatusBadRequest))
		return
	}

	err = h.Payments.CompleteFromWebhook(c.Request.Context(), event)
	if err != nil && !services.IsDuplicate(err) {
		h.Alerter.LogWebhook("gateway", "Payin", event.Reference(), string(body), err.Error(), statusFor(err))
		respondError(c, err)
		return
	}

	h.Alerter.LogWebhook("gateway", "Payin", event.Reference(), string(body), "processed", http.StatusOK)
	respondOK(c, nil, "webhook processed")
}
