package services

import (
	"fmt"
	"testing"

	"prediction-wallet-service/internal/cache"
	"prediction-wallet-service/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory sqlite database. The shared-cache
// DSN keeps gorm's pooled connections on the same database; the test name
// keeps parallel tests apart.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Account{},
		&models.LedgerEntry{},
		&models.Market{},
		&models.Wager{},
		&models.PendingPayment{},
		&models.PendingPayout{},
		&models.Sale{},
		&models.WebhookLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// newTestBalance returns a BalanceService with a no-op cache.
func newTestBalance(db *gorm.DB) *BalanceService {
	return NewBalanceService(db, cache.New(nil))
}

func createTestAccount(t *testing.T, balance *BalanceService, externalID string) *models.Account {
	t.Helper()
	account, err := balance.EnsureAccount(externalID, "Test User", "test@example.com", "+911234567890")
	if err != nil {
		t.Fatalf("EnsureAccount failed: %v", err)
	}
	return account
}

// seedDeposit funds an account through the admin path so tests start from a
// known balance.
func seedDeposit(t *testing.T, db *gorm.DB, balance *BalanceService, accountID uint, amount float64) {
	t.Helper()
	admin := NewAdminService(db, balance)
	if _, err := admin.Adjust(t.Context(), AdjustmentDTO{
		AccountID: accountID,
		Type:      models.EntryKindDeposit,
		Amount:    amount,
	}); err != nil {
		t.Fatalf("seed deposit failed: %v", err)
	}
}

func entryCount(t *testing.T, db *gorm.DB, accountID uint) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.LedgerEntry{}).Where("account_id = ?", accountID).Count(&count).Error; err != nil {
		t.Fatalf("entry count failed: %v", err)
	}
	return count
}
