package models

import (
	"time"
)

const (
	PayoutStatusSubmitted = "SUBMITTED"
	PayoutStatusSettled   = "SETTLED"
	PayoutStatusFailed    = "FAILED"
)

// PendingPayout is best-effort bookkeeping for a gateway payout that has
// already been submitted. Failure to insert this row never unwinds the
// payout; the debit ledger entry it links to is the financial record.
type PendingPayout struct {
	ID                  uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             string    `gorm:"column:order_id;size:40;not null;uniqueIndex" json:"order_id"`
	AccountID           uint      `gorm:"column:account_id;not null;index:idx_payout_account" json:"account_id"`
	Amount              float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	BeneficiaryName     string    `gorm:"column:beneficiary_name;size:150" json:"beneficiary_name"`
	BeneficiaryAccount  string    `gorm:"column:beneficiary_account;size:50" json:"beneficiary_account"`
	BeneficiaryIFSC     string    `gorm:"column:beneficiary_ifsc;size:20" json:"beneficiary_ifsc"`
	WalletTransactionID uint      `gorm:"column:wallet_transaction_id;not null" json:"wallet_transaction_id"`
	Status              string    `gorm:"column:status;size:20;not null;default:SUBMITTED" json:"status"`
	GatewayTxnID        string    `gorm:"column:gateway_txn_id;size:100" json:"gateway_txn_id"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PendingPayout) TableName() string {
	return "pending_payouts"
}
