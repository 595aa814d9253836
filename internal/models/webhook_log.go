package models

import (
	"time"
)

// WebhookLog records every inbound webhook delivery and any operator-facing
// reconciliation alert. Purely diagnostic; nothing reads it back in a flow.
type WebhookLog struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Source      string    `gorm:"column:source;size:50" json:"source"`
	RequestType string    `gorm:"column:request_type;size:50" json:"request_type"`
	Reference   string    `gorm:"column:reference;size:100;index" json:"reference"`
	Request     string    `gorm:"column:request;type:longtext" json:"request"`
	Response    string    `gorm:"column:response;type:longtext" json:"response"`
	Status      int       `gorm:"column:status;default:0" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (WebhookLog) TableName() string {
	return "webhook_logs"
}
