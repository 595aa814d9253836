package services

import (
	"context"
	"encoding/json"
	"log"

	"prediction-wallet-service/internal/models"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// Task type names, mirrored in internal/worker to avoid an import cycle.
const (
	TypeOpsAlert     = "ops-alert"
	TypeInvoiceEmail = "invoice-email"
)

type OpsAlertPayload struct {
	Source    string `json:"source"`
	Reference string `json:"reference"`
	Detail    string `json:"detail"`
}

type InvoiceEmailPayload struct {
	SaleID    string `json:"saleId"`
	AccountID uint   `json:"accountId"`
}

// Alerter records operator-facing events (bookkeeping gaps, consistency
// drift) and hands them to the worker queue. Everything here is
// fire-and-log: an alert that cannot be recorded never fails the flow that
// raised it.
type Alerter struct {
	DB     *gorm.DB
	Client *asynq.Client
}

func NewAlerter(db *gorm.DB, client *asynq.Client) *Alerter {
	return &Alerter{DB: db, Client: client}
}

// RecordGap persists a reconciliation gap and enqueues an operator alert.
func (a *Alerter) RecordGap(ctx context.Context, source, reference, detail string) {
	if a == nil {
		return
	}

	if a.DB != nil {
		row := models.WebhookLog{
			Source:      source,
			RequestType: "ReconciliationGap",
			Reference:   reference,
			Request:     detail,
			Status:      0,
		}
		if err := a.DB.Create(&row).Error; err != nil {
			log.Printf("alerter: failed to persist gap record: %v", err)
		}
	}

	a.enqueue(ctx, TypeOpsAlert, OpsAlertPayload{Source: source, Reference: reference, Detail: detail})
}

// QueueInvoiceEmail schedules the invoice mail for a completed sale.
func (a *Alerter) QueueInvoiceEmail(ctx context.Context, saleID string, accountID uint) {
	if a == nil {
		return
	}
	a.enqueue(ctx, TypeInvoiceEmail, InvoiceEmailPayload{SaleID: saleID, AccountID: accountID})
}

func (a *Alerter) enqueue(ctx context.Context, taskType string, payload interface{}) {
	if a.Client == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("alerter: marshal %s: %v", taskType, err)
		return
	}
	if _, err := a.Client.EnqueueContext(ctx, asynq.NewTask(taskType, data)); err != nil {
		log.Printf("alerter: enqueue %s: %v", taskType, err)
	}
}

// LogWebhook records an inbound webhook delivery for diagnostics.
func (a *Alerter) LogWebhook(source, requestType, reference, request, response string, status int) {
	if a == nil || a.DB == nil {
		return
	}
	row := models.WebhookLog{
		Source:      source,
		RequestType: requestType,
		Reference:   reference,
		Request:     request,
		Response:    response,
		Status:      status,
	}
	if err := a.DB.Create(&row).Error; err != nil {
		log.Printf("alerter: failed to log webhook: %v", err)
	}
}
