package worker

import (
	"encoding/json"

	"prediction-wallet-service/internal/consumers"

	"github.com/hibiken/asynq"
)

// Task types, mirrored in internal/services to avoid an import cycle.
const (
	TypeOpsAlert     = "ops-alert"
	TypeInvoiceEmail = "invoice-email"
)

func NewOpsAlertTask(payload consumers.OpsAlertDTO) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeOpsAlert, data), nil
}

func NewInvoiceEmailTask(payload consumers.InvoiceEmailDTO) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeInvoiceEmail, data), nil
}
