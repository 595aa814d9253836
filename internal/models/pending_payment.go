package models

import (
	"time"
)

const (
	PaymentStatusPending = "PENDING"
	PaymentStatusSuccess = "SUCCESS"
	PaymentStatusFailed  = "FAILED"
	PaymentStatusExpired = "EXPIRED"
)

// PendingPayment tracks a gateway payin from initiation to its terminal
// status. A row leaves PENDING exactly once; the order id is the
// idempotency key for webhook delivery.
type PendingPayment struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      string     `gorm:"column:order_id;size:40;not null;uniqueIndex" json:"order_id"`
	AccountID    uint       `gorm:"column:account_id;not null;index:idx_payment_account" json:"account_id"`
	PaintingID   string     `gorm:"column:painting_id;size:64;not null" json:"painting_id"`
	AmountInr    float64    `gorm:"column:amount_inr;type:decimal(12,2);not null" json:"amount_inr"`
	BonusAmount  float64    `gorm:"column:bonus_amount;type:decimal(20,2);not null" json:"bonus_amount"`
	Status       string     `gorm:"column:status;size:20;not null;default:PENDING;index" json:"status"`
	GatewayTxnID string     `gorm:"column:gateway_txn_id;size:100" json:"gateway_txn_id"`
	SaleID       *string    `gorm:"column:sale_id;size:40" json:"sale_id"`
	CompletedAt  *time.Time `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PendingPayment) TableName() string {
	return "pending_payments"
}
