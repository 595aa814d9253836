package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prediction-wallet-service/internal/models"
	"prediction-wallet-service/pkg/common"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// gstRate is the tax share baked into the gross purchase price on the
// generated invoice.
var gstRate = decimal.NewFromFloat(0.18)

// PaymentService runs the payin side: a purchase creates a PENDING order,
// the customer is redirected to the gateway, and the later webhook converts
// the order into a ledger credit plus an invoice-bearing sale — exactly
// once per order id.
type PaymentService struct {
	DB        *gorm.DB
	Balance   *BalanceService
	Gateway   *GatewayClient
	Alerter   *Alerter
	BonusRate float64
}

func NewPaymentService(db *gorm.DB, balance *BalanceService, gateway *GatewayClient, alerter *Alerter, bonusRate float64) *PaymentService {
	if bonusRate <= 0 {
		bonusRate = 1
	}
	return &PaymentService{DB: db, Balance: balance, Gateway: gateway, Alerter: alerter, BonusRate: bonusRate}
}

type InitiateDepositDTO struct {
	PaintingID string
	AmountInr  float64
}

type InitiateDepositResult struct {
	OrderID     string `json:"orderId"`
	RedirectURL string `json:"redirectUrl"`
}

// InitiateDeposit starts a purchase payin. No balance changes here; the
// credit is deferred to the webhook. A gateway failure just marks the order
// FAILED — no funds moved, nothing to compensate.
func (s *PaymentService) InitiateDeposit(ctx context.Context, account *models.Account, data InitiateDepositDTO) (*InitiateDepositResult, error) {
	if data.PaintingID == "" {
		return nil, fmt.Errorf("%w: paintingId is required", ErrInvalidRequest)
	}
	if data.AmountInr <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidRequest)
	}

	orderID := common.GenerateOrderRef()

	payment := models.PendingPayment{
		OrderID:     orderID,
		AccountID:   account.ID,
		PaintingID:  data.PaintingID,
		AmountInr:   data.AmountInr,
		BonusAmount: data.AmountInr * s.BonusRate,
		Status:      models.PaymentStatusPending,
	}
	if err := s.DB.Create(&payment).Error; err != nil {
		return nil, err
	}

	result, err := s.Gateway.CreatePayin(ctx, PayinRequest{
		OrderID:       orderID,
		AmountInr:     data.AmountInr,
		CustomerName:  account.Name,
		CustomerEmail: account.Email,
		CustomerPhone: account.Phone,
	})
	if err != nil {
		s.DB.Model(&models.PendingPayment{}).
			Where("order_id = ?", orderID).
			Update("status", models.PaymentStatusFailed)
		return nil, err
	}

	s.DB.Model(&models.PendingPayment{}).
		Where("order_id = ?", orderID).
		Update("gateway_txn_id", result.GatewayTxnID)

	return &InitiateDepositResult{OrderID: orderID, RedirectURL: result.RedirectURL}, nil
}

// GatewayWebhookEvent is the parsed gateway callback body. The gateway is
// inconsistent about the order id key, so both spellings are accepted.
type GatewayWebhookEvent struct {
	OrderID       string `json:"orderId"`
	OrderIDSnake  string `json:"order_id"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

func (e GatewayWebhookEvent) Reference() string {
	if e.OrderID != "" {
		return e.OrderID
	}
	return e.OrderIDSnake
}

// CompleteFromWebhook applies a gateway status callback. Idempotent by
// order id: the PENDING -> terminal transition happens exactly once, and
// only the SUCCESS transition moves money.
func (s *PaymentService) CompleteFromWebhook(ctx context.Context, event GatewayWebhookEvent) error {
	orderID := event.Reference()
	if orderID == "" {
		return fmt.Errorf("%w: missing order id", ErrInvalidRequest)
	}

	var payment models.PendingPayment
	if err := s.DB.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		return err
	}

	if payment.Status != models.PaymentStatusPending {
		// Duplicate delivery; the first one already landed.
		return ErrDuplicateEvent
	}

	switch event.Status {
	case models.PaymentStatusFailed, models.PaymentStatusExpired:
		return s.markTerminal(orderID, event.Status, event.TransactionID)
	case models.PaymentStatusSuccess:
		return s.completeSuccess(ctx, &payment, event.TransactionID)
	default:
		return fmt.Errorf("%w: gateway status %q", ErrUnknownEvent, event.Status)
	}
}

func (s *PaymentService) markTerminal(orderID, status, txnID string) error {
	updates := map[string]interface{}{
		"status":       status,
		"completed_at": time.Now(),
	}
	if txnID != "" {
		updates["gateway_txn_id"] = txnID
	}
	res := s.DB.Model(&models.PendingPayment{}).
		Where("order_id = ? AND status = ?", orderID, models.PaymentStatusPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDuplicateEvent
	}
	return nil
}

// completeSuccess is the only path that moves money for a purchase. The
// conditional status flip inside the transaction is what makes a raced
// double delivery collapse to a single credit.
func (s *PaymentService) completeSuccess(ctx context.Context, payment *models.PendingPayment, txnID string) error {
	var saleID string

	err := s.Balance.WithAccountLock(ctx, payment.AccountID, func(tx *gorm.DB) error {
		now := time.Now()
		updates := map[string]interface{}{
			"status":       models.PaymentStatusSuccess,
			"completed_at": now,
		}
		if txnID != "" {
			updates["gateway_txn_id"] = txnID
		}
		res := tx.Model(&models.PendingPayment{}).
			Where("order_id = ? AND status = ?", payment.OrderID, models.PaymentStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDuplicateEvent
		}

		entry, err := s.Balance.Append(tx, payment.AccountID, models.EntryKindDeposit,
			payment.BonusAmount,
			fmt.Sprintf("Purchase bonus, order %s", payment.OrderID), nil)
		if err != nil {
			return err
		}

		var saleCount int64
		if err := tx.Model(&models.Sale{}).Count(&saleCount).Error; err != nil {
			return err
		}

		gross := decimal.NewFromFloat(payment.AmountInr)
		net := gross.Div(decimal.NewFromInt(1).Add(gstRate)).Round(2)
		gst := gross.Sub(net)

		sale := models.Sale{
			ID:            uuid.NewString(),
			AccountID:     payment.AccountID,
			OrderID:       payment.OrderID,
			PaintingID:    payment.PaintingID,
			InvoiceNo:     common.GenerateInvoiceNo(now.Year(), saleCount+1),
			LedgerEntryID: entry.ID,
			AmountNet:     net,
			AmountGST:     gst,
			AmountGross:   gross,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}
		saleID = sale.ID

		return tx.Model(&models.PendingPayment{}).
			Where("order_id = ?", payment.OrderID).
			Update("sale_id", sale.ID).Error
	})
	if err != nil {
		return err
	}

	// Mail dispatch is best effort and lives outside the money transaction.
	s.Alerter.QueueInvoiceEmail(ctx, saleID, payment.AccountID)
	return nil
}

// ExpireStalePayments sweeps PENDING payins older than ttl to EXPIRED.
// Run from the scheduler; a later gateway webhook for an expired order is
// reported as a duplicate and ignored.
func (s *PaymentService) ExpireStalePayments(ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	res := s.DB.Model(&models.PendingPayment{}).
		Where("status = ? AND created_at < ?", models.PaymentStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":       models.PaymentStatusExpired,
			"completed_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

// IsDuplicate reports whether err is the idempotency short-circuit, which
// handlers answer with success.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateEvent)
}
