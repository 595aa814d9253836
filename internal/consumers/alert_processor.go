package consumers

import (
	"context"
	"fmt"
	"log"

	"prediction-wallet-service/internal/models"

	"gorm.io/gorm"
)

// EmailClient sends the invoice mail for a completed purchase. The default
// implementation only logs; a real SMTP/provider client is dropped in by
// the deployment.
type EmailClient interface {
	SendInvoice(ctx context.Context, to string, sale *models.Sale) error
}

type logEmailClient struct{}

func (logEmailClient) SendInvoice(_ context.Context, to string, sale *models.Sale) error {
	log.Printf("invoice %s for sale %s would be mailed to %s", sale.InvoiceNo, sale.ID, to)
	return nil
}

// AlertProcessor executes the queued background jobs: operator alerts and
// invoice emails. Handlers are deliberately tolerant — a malformed or
// stale job is logged and dropped rather than retried forever.
type AlertProcessor struct {
	DB    *gorm.DB
	Email EmailClient
}

func NewAlertProcessor(db *gorm.DB, email EmailClient) *AlertProcessor {
	if email == nil {
		email = logEmailClient{}
	}
	return &AlertProcessor{DB: db, Email: email}
}

type OpsAlertDTO struct {
	Source    string `json:"source"`
	Reference string `json:"reference"`
	Detail    string `json:"detail"`
}

type InvoiceEmailDTO struct {
	SaleID    string `json:"saleId"`
	AccountID uint   `json:"accountId"`
}

// ProcessOpsAlert surfaces a recorded gap to the operator channel. The
// durable WebhookLog row already exists by the time this runs; the task is
// purely the noisy notification.
func (p *AlertProcessor) ProcessOpsAlert(dto OpsAlertDTO) {
	log.Printf("OPS ALERT [%s] ref=%s: %s", dto.Source, dto.Reference, dto.Detail)
}

func (p *AlertProcessor) ProcessInvoiceEmail(ctx context.Context, dto InvoiceEmailDTO) error {
	var sale models.Sale
	if err := p.DB.Where("id = ?", dto.SaleID).First(&sale).Error; err != nil {
		return fmt.Errorf("invoice email: sale %s not found: %w", dto.SaleID, err)
	}

	var account models.Account
	if err := p.DB.Where("id = ?", dto.AccountID).First(&account).Error; err != nil {
		return fmt.Errorf("invoice email: account %d not found: %w", dto.AccountID, err)
	}

	if account.Email == "" {
		log.Printf("invoice email: account %d has no email address, skipping sale %s", dto.AccountID, dto.SaleID)
		return nil
	}

	return p.Email.SendInvoice(ctx, account.Email, &sale)
}
