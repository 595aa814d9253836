package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"prediction-wallet-service/internal/cache"
	"prediction-wallet-service/internal/config"
	"prediction-wallet-service/internal/models"
	"prediction-wallet-service/internal/services"
	"prediction-wallet-service/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newWebhookTestEnv(t *testing.T, strict bool) (*gin.Engine, *gorm.DB, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Account{}, &models.LedgerEntry{}, &models.Market{}, &models.Wager{},
		&models.PendingPayment{}, &models.PendingPayout{}, &models.Sale{}, &models.WebhookLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := &config.Config{
		SettlementSecret:       "settlement-secret",
		GatewayAPISecret:       "gw-secret",
		GatewaySalt:            "gw-salt",
		WebhookStrictSignature: strict,
	}

	balance := services.NewBalanceService(db, cache.New(nil))
	alerter := services.NewAlerter(db, nil)
	settlement := services.NewSettlementService(db, balance)
	payments := services.NewPaymentService(db, balance, services.NewGatewayClient("http://unused", "k", "s", "x"), alerter, 1.0)

	handler := NewWebhookHandler(cfg, settlement, payments, alerter)

	r := gin.New()
	r.POST("/webhooks/settlement", handler.HandleSettlement)
	r.POST("/webhooks/gateway", handler.HandleGateway)
	return r, db, cfg
}

func postWebhook(r *gin.Engine, path string, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSettlementWebhookValidSignature(t *testing.T) {
	r, db, cfg := newWebhookTestEnv(t, false)

	body, _ := json.Marshal(map[string]interface{}{
		"event":    services.EventMarketSettled,
		"marketId": "m1",
		"outcome":  "yes",
	})
	sig := common.SignBodyHex(body, cfg.SettlementSecret)

	w := postWebhook(r, "/webhooks/settlement", body, sig)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var market models.Market
	if err := db.Where("id = ?", "m1").First(&market).Error; err != nil {
		t.Fatalf("market not settled: %v", err)
	}
	assert.Equal(t, models.MarketStatusSettled, market.Status)
}

func TestSettlementWebhookInvalidSignature(t *testing.T) {
	r, db, _ := newWebhookTestEnv(t, false)

	body := []byte(`{"event":"market.settled","marketId":"m1","outcome":"yes"}`)
	sig := common.SignBodyHex(body, "wrong-secret")

	w := postWebhook(r, "/webhooks/settlement", body, sig)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var markets int64
	db.Model(&models.Market{}).Count(&markets)
	assert.Equal(t, int64(0), markets, "rejected webhook must not mutate state")
}

func TestSettlementWebhookMissingSignature(t *testing.T) {
	t.Run("lenient", func(t *testing.T) {
		r, _, _ := newWebhookTestEnv(t, false)
		body := []byte(`{"event":"market.settled","marketId":"m1","outcome":"yes"}`)
		w := postWebhook(r, "/webhooks/settlement", body, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("strict", func(t *testing.T) {
		r, _, _ := newWebhookTestEnv(t, true)
		body := []byte(`{"event":"market.settled","marketId":"m1","outcome":"yes"}`)
		w := postWebhook(r, "/webhooks/settlement", body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSettlementWebhookUnknownEvent(t *testing.T) {
	r, _, cfg := newWebhookTestEnv(t, false)

	body := []byte(`{"event":"market.created","marketId":"m1","outcome":"yes"}`)
	w := postWebhook(r, "/webhooks/settlement", body, common.SignBodyHex(body, cfg.SettlementSecret))
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown events are rejected, not ignored")
}

func TestGatewayWebhookCreditsAndDeduplicates(t *testing.T) {
	r, db, cfg := newWebhookTestEnv(t, false)

	account := models.Account{ExternalID: "sub-hook"}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("seed account failed: %v", err)
	}
	payment := models.PendingPayment{
		OrderID: "PWHOOK1", AccountID: account.ID, PaintingID: "p-1",
		AmountInr: 118, BonusAmount: 118, Status: models.PaymentStatusPending,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment failed: %v", err)
	}

	payload := map[string]interface{}{
		"order_id":       "PWHOOK1",
		"status":         models.PaymentStatusSuccess,
		"transaction_id": "gtxn-1",
	}
	body, _ := json.Marshal(payload)
	sig, _ := common.SignCanonicalBase64(payload, cfg.GatewayAPISecret, cfg.GatewaySalt)

	w := postWebhook(r, "/webhooks/gateway", body, sig)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var entries int64
	db.Model(&models.LedgerEntry{}).Where("account_id = ?", account.ID).Count(&entries)
	assert.Equal(t, int64(1), entries)

	// Same delivery again: still 200, still one entry.
	w = postWebhook(r, "/webhooks/gateway", body, sig)
	assert.Equal(t, http.StatusOK, w.Code, "duplicate delivery is answered with success")

	db.Model(&models.LedgerEntry{}).Where("account_id = ?", account.ID).Count(&entries)
	assert.Equal(t, int64(1), entries)
}

func TestGatewayWebhookSignatureModes(t *testing.T) {
	t.Run("invalid rejected", func(t *testing.T) {
		r, _, _ := newWebhookTestEnv(t, false)
		body := []byte(`{"order_id":"PW1","status":"SUCCESS"}`)
		w := postWebhook(r, "/webhooks/gateway", body, "bm9wZQ==")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing strict rejected", func(t *testing.T) {
		r, _, _ := newWebhookTestEnv(t, true)
		body := []byte(`{"order_id":"PW1","status":"SUCCESS"}`)
		w := postWebhook(r, "/webhooks/gateway", body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
