package main

import (
	"log"

	"github.com/hibiken/asynq"

	"prediction-wallet-service/internal/config"
	"prediction-wallet-service/internal/consumers"
	"prediction-wallet-service/internal/database"
	"prediction-wallet-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	processor := consumers.NewAlertProcessor(db, nil)

	log.Println("Worker starting...")
	worker.StartWorker(asynq.RedisClientOpt{Addr: cfg.RedisURL}, processor)
}
