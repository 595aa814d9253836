package models

import (
	"time"
)

const (
	WagerStatusPending = "PENDING"
	WagerStatusActive  = "ACTIVE"
	WagerStatusWon     = "WON"
	WagerStatusLost    = "LOST"
)

const (
	SelectionYes = "yes"
	SelectionNo  = "no"
)

// Wager is created only after the odds API accepts the bet; its id comes
// from the remote system. Settlement updates it, nothing deletes it.
type Wager struct {
	ID           string  `gorm:"primaryKey;size:64" json:"id"`
	AccountID    uint    `gorm:"column:account_id;not null;index:idx_wager_account" json:"account_id"`
	MarketID     string  `gorm:"column:market_id;size:64;not null;index:idx_wager_market" json:"market_id"`
	Selection    string  `gorm:"column:selection;size:10;not null" json:"selection"`
	Stake        float64 `gorm:"column:stake;type:decimal(20,2);not null" json:"stake"`
	OddsYes      float64 `gorm:"column:odds_yes;type:decimal(10,4);default:1" json:"odds_yes"`
	OddsNo       float64 `gorm:"column:odds_no;type:decimal(10,4);default:1" json:"odds_no"`
	PotentialWin float64 `gorm:"column:potential_win;type:decimal(20,2);not null" json:"potential_win"`
	Status       string  `gorm:"column:status;size:20;not null;default:ACTIVE" json:"status"`
	// MarketStatus mirrors the market row for display; the market is the
	// source of truth.
	MarketStatus string     `gorm:"column:market_status;size:20" json:"market_status"`
	ActualPayout *float64   `gorm:"column:actual_payout;type:decimal(20,2)" json:"actual_payout"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	SettledAt    *time.Time `gorm:"column:settled_at" json:"settled_at"`
}

func (Wager) TableName() string {
	return "wagers"
}
