package models

import (
	"time"
)

const (
	MarketStatusOpen    = "OPEN"
	MarketStatusClosed  = "CLOSED"
	MarketStatusSettled = "SETTLED"
)

// Market rows are upserted opportunistically whenever a wager references a
// market or a settlement event arrives. Status only moves forward:
// OPEN -> CLOSED -> SETTLED.
type Market struct {
	ID         string     `gorm:"primaryKey;size:64" json:"id"`
	Title      string     `gorm:"column:title;size:255" json:"title"`
	Status     string     `gorm:"column:status;size:20;not null;default:OPEN" json:"status"`
	Outcome    *string    `gorm:"column:outcome;size:10" json:"outcome"`
	PoolYes    float64    `gorm:"column:pool_yes;type:decimal(20,2);default:0" json:"pool_yes"`
	PoolNo     float64    `gorm:"column:pool_no;type:decimal(20,2);default:0" json:"pool_no"`
	OddsYes    float64    `gorm:"column:odds_yes;type:decimal(10,4);default:1" json:"odds_yes"`
	OddsNo     float64    `gorm:"column:odds_no;type:decimal(10,4);default:1" json:"odds_no"`
	ResolvedAt *time.Time `gorm:"column:resolved_at" json:"resolved_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Market) TableName() string {
	return "markets"
}

// statusRank orders market statuses for the monotonic transition check.
func statusRank(s string) int {
	switch s {
	case MarketStatusOpen:
		return 0
	case MarketStatusClosed:
		return 1
	case MarketStatusSettled:
		return 2
	}
	return -1
}

// StatusAdvances reports whether moving from to next is a forward transition.
func StatusAdvances(from, next string) bool {
	return statusRank(next) > statusRank(from)
}
