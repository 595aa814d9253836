package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"prediction-wallet-service/internal/consumers"

	"github.com/hibiken/asynq"
)

type Worker struct {
	Processor *consumers.AlertProcessor
}

func NewWorker(processor *consumers.AlertProcessor) *Worker {
	return &Worker{Processor: processor}
}

func (w *Worker) HandleOpsAlert(ctx context.Context, t *asynq.Task) error {
	var p consumers.OpsAlertDTO
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	w.Processor.ProcessOpsAlert(p)
	return nil
}

func (w *Worker) HandleInvoiceEmail(ctx context.Context, t *asynq.Task) error {
	var p consumers.InvoiceEmailDTO
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	return w.Processor.ProcessInvoiceEmail(ctx, p)
}

func StartWorker(redisOpt asynq.RedisClientOpt, processor *consumers.AlertProcessor) {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	worker := NewWorker(processor)
	mux := asynq.NewServeMux()

	mux.HandleFunc(TypeOpsAlert, worker.HandleOpsAlert)
	mux.HandleFunc(TypeInvoiceEmail, worker.HandleInvoiceEmail)

	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run worker server: %v", err)
	}
}
