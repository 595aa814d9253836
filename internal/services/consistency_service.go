package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"prediction-wallet-service/internal/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ConsistencyService owns the periodic sweeps: expiring stale payins and
// checking the cached balances against the ledger. The ledger is ground
// truth; drift is corrected in the cache and reported, never written back
// into the ledger.
type ConsistencyService struct {
	DB       *gorm.DB
	Balance  *BalanceService
	Payments *PaymentService
	Alerter  *Alerter

	PaymentTTL time.Duration
}

func NewConsistencyService(db *gorm.DB, balance *BalanceService, payments *PaymentService, alerter *Alerter, paymentTTL time.Duration) *ConsistencyService {
	if paymentTTL <= 0 {
		paymentTTL = 30 * time.Minute
	}
	return &ConsistencyService{
		DB:         db,
		Balance:    balance,
		Payments:   payments,
		Alerter:    alerter,
		PaymentTTL: paymentTTL,
	}
}

// CheckBalances recomputes every account's balance from the ledger and
// refreshes the cache. A mismatch between the latest snapshot and the
// derived sum means an append broke the per-account ordering and is
// raised as an operator alert.
func (s *ConsistencyService) CheckBalances(ctx context.Context) (int, error) {
	var accounts []models.Account
	if err := s.DB.Find(&accounts).Error; err != nil {
		return 0, err
	}

	mismatches := 0
	for _, account := range accounts {
		derived, err := sumEntries(s.DB, account.ID)
		if err != nil {
			return mismatches, err
		}

		var last models.LedgerEntry
		err = s.DB.Where("account_id = ?", account.ID).Order("id DESC").First(&last).Error
		if err == nil && last.BalanceAfter != derived {
			mismatches++
			s.Alerter.RecordGap(ctx, "consistency", fmt.Sprintf("account:%d", account.ID),
				fmt.Sprintf("derived balance %.2f disagrees with last snapshot %.2f", derived, last.BalanceAfter))
		}

		s.Balance.Cache.Set(ctx, account.ID, derived)
	}
	return mismatches, nil
}

// ExpirePayments runs the stale-payin sweep, with an optional TTL override
// in minutes (zero means the configured TTL).
func (s *ConsistencyService) ExpirePayments(minutes int) (int64, error) {
	ttl := s.PaymentTTL
	if minutes > 0 {
		ttl = time.Duration(minutes) * time.Minute
	}
	return s.Payments.ExpireStalePayments(ttl)
}

// StartScheduler wires the sweeps into cron, matching the service's other
// schedulers: expiry every 10 minutes, the balance check hourly.
func (s *ConsistencyService) StartScheduler() {
	c := cron.New()

	_, err := c.AddFunc("*/10 * * * *", func() {
		expired, err := s.Payments.ExpireStalePayments(s.PaymentTTL)
		if err != nil {
			log.Printf("payment expiry sweep failed: %v", err)
			return
		}
		if expired > 0 {
			log.Printf("payment expiry sweep: %d orders expired", expired)
		}
	})
	if err != nil {
		log.Printf("error scheduling payment expiry sweep: %v", err)
		return
	}

	_, err = c.AddFunc("0 * * * *", func() {
		mismatches, err := s.CheckBalances(context.Background())
		if err != nil {
			log.Printf("balance consistency check failed: %v", err)
			return
		}
		if mismatches > 0 {
			log.Printf("balance consistency check: %d mismatches found", mismatches)
		}
	})
	if err != nil {
		log.Printf("error scheduling balance consistency check: %v", err)
		return
	}

	c.Start()
	log.Println("Consistency scheduler started")
}
