package models

import (
	"time"
)

// Account maps the identity provider's opaque subject to an internal id.
// Rows are created on first reference and never deleted while ledger
// entries point at them.
type Account struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID string `gorm:"column:external_id;size:255;not null;uniqueIndex" json:"external_id"`
	Name       string `gorm:"column:name;size:255" json:"name"`
	Email      string `gorm:"column:email;size:255" json:"email"`
	Phone      string `gorm:"column:phone;size:50" json:"phone"`
	// LockVersion is bumped atomically to take a row lock before any
	// balance-affecting sequence. It carries no meaning beyond serialization.
	LockVersion int64     `gorm:"column:lock_version;default:0" json:"-"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}
