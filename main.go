package main

import (
	"log"
	"time"

	"prediction-wallet-service/internal/cache"
	"prediction-wallet-service/internal/config"
	"prediction-wallet-service/internal/database"
	"prediction-wallet-service/internal/handlers"
	"prediction-wallet-service/internal/middleware"
	"prediction-wallet-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis: balance cache + task queue client.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	balanceCache := cache.New(rdb)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisURL})
	defer asynqClient.Close()

	// Remote collaborators.
	oddsClient := services.NewOddsClient(cfg.OddsAPIBaseURL, cfg.OddsAPIKey)
	gatewayClient := services.NewGatewayClient(cfg.GatewayBaseURL, cfg.GatewayAPIKey, cfg.GatewayAPISecret, cfg.GatewaySalt)

	// Services.
	alerter := services.NewAlerter(db, asynqClient)
	balanceService := services.NewBalanceService(db, balanceCache)
	wagerService := services.NewWagerService(db, balanceService, oddsClient, alerter)
	settlementService := services.NewSettlementService(db, balanceService)
	paymentService := services.NewPaymentService(db, balanceService, gatewayClient, alerter, cfg.PurchaseBonusRate)
	payoutService := services.NewPayoutService(db, balanceService, gatewayClient, alerter)
	adminService := services.NewAdminService(db, balanceService)
	consistencyService := services.NewConsistencyService(db, balanceService, paymentService, alerter,
		time.Duration(cfg.PaymentExpiryMinutes)*time.Minute)

	// Handlers.
	walletHandler := handlers.NewWalletHandler(balanceService)
	wagerHandler := handlers.NewWagerHandler(wagerService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, payoutService)
	webhookHandler := handlers.NewWebhookHandler(cfg, settlementService, paymentService, alerter)
	adminHandler := handlers.NewAdminHandler(adminService, consistencyService)

	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "prediction wallet service"})
	})

	// Webhooks authenticate with HMAC signatures, not bearer tokens.
	r.POST("/webhooks/settlement", webhookHandler.HandleSettlement)
	r.POST("/webhooks/gateway", webhookHandler.HandleGateway)

	authed := r.Group("/", middleware.Auth(cfg.JWTSecret, balanceService))
	{
		authed.GET("/wallet/balance", walletHandler.GetBalance)
		authed.GET("/wallet/transactions", walletHandler.GetTransactions)
		authed.GET("/wallet/summary", walletHandler.GetSummary)

		authed.GET("/markets", wagerHandler.ListMarkets)
		authed.POST("/wagers", wagerHandler.PlaceWager)
		authed.GET("/wagers", wagerHandler.ListWagers)

		authed.POST("/payments/deposit", paymentHandler.InitiateDeposit)
		authed.POST("/payments/payout", paymentHandler.RequestPayout)
		authed.GET("/payments/payouts", paymentHandler.ListPayouts)
	}

	admin := r.Group("/admin", middleware.Auth(cfg.JWTSecret, balanceService), middleware.RequireAdmin())
	{
		admin.POST("/adjustments", adminHandler.Adjust)
		admin.POST("/consistency-check", adminHandler.CheckConsistency)
		admin.POST("/expire-payments", adminHandler.ExpirePayments)
	}

	consistencyService.StartScheduler()

	log.Printf("HTTP Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
