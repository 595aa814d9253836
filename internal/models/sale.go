package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is the invoice-facing record of a completed purchase, linked 1:1 to
// the ledger entry that credited the purchase bonus. Amounts are exact
// decimals for document generation.
type Sale struct {
	ID            string          `gorm:"primaryKey;size:40" json:"id"`
	AccountID     uint            `gorm:"column:account_id;not null;index:idx_sale_account" json:"account_id"`
	OrderID       string          `gorm:"column:order_id;size:40;not null;uniqueIndex" json:"order_id"`
	PaintingID    string          `gorm:"column:painting_id;size:64;not null" json:"painting_id"`
	InvoiceNo     string          `gorm:"column:invoice_no;size:40;not null;uniqueIndex" json:"invoice_no"`
	LedgerEntryID uint            `gorm:"column:ledger_entry_id;not null;uniqueIndex" json:"ledger_entry_id"`
	AmountNet     decimal.Decimal `gorm:"column:amount_net;type:decimal(12,2)" json:"amount_net"`
	AmountGST     decimal.Decimal `gorm:"column:amount_gst;type:decimal(12,2)" json:"amount_gst"`
	AmountGross   decimal.Decimal `gorm:"column:amount_gross;type:decimal(12,2)" json:"amount_gross"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Sale) TableName() string {
	return "sales"
}
