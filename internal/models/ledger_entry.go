package models

import (
	"time"
)

// Ledger entry kinds. Amounts are signed: credits positive, debits negative.
const (
	EntryKindDeposit  = "deposit"
	EntryKindWithdraw = "withdraw"
	EntryKindWin      = "win"
)

// LedgerEntry is an immutable balance-affecting event. Corrections are new
// entries; rows are never updated or deleted. The one exception is WagerRef,
// which starts null and is bound once when the remote wager is accepted.
type LedgerEntry struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID uint    `gorm:"column:account_id;not null;index:idx_ledger_account" json:"account_id"`
	Kind      string  `gorm:"column:kind;size:20;not null" json:"kind"`
	Amount    float64 `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	// BalanceAfter is a display/audit snapshot: sum of all prior entries for
	// the account plus Amount, computed in the same transaction as the append.
	BalanceAfter float64   `gorm:"column:balance_after;type:decimal(20,2);not null" json:"balance_after"`
	Description  string    `gorm:"column:description;size:255" json:"description"`
	WagerRef     *string   `gorm:"column:wager_ref;size:64;index" json:"wager_ref"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
