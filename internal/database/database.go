package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"prediction-wallet-service/internal/config"
	"prediction-wallet-service/internal/models"
)

// Connect opens the MySQL pool described by cfg. The handle is returned to
// the caller and injected into every service; there is no package-level
// connection state.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.LedgerEntry{},
		&models.Market{},
		&models.Wager{},
		&models.PendingPayment{},
		&models.PendingPayout{},
		&models.Sale{},
		&models.WebhookLog{},
	)
}
