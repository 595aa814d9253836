package services

import (
	"context"
	"fmt"

	"prediction-wallet-service/internal/models"

	"gorm.io/gorm"
)

// AdminService is the privileged direct-entry path. No external calls; it
// exists to reuse the Balance Service append contract for manual
// corrections and promotional credits.
type AdminService struct {
	DB      *gorm.DB
	Balance *BalanceService
}

func NewAdminService(db *gorm.DB, balance *BalanceService) *AdminService {
	return &AdminService{DB: db, Balance: balance}
}

type AdjustmentDTO struct {
	AccountID   uint
	Type        string // deposit or withdraw
	Amount      float64
	Description string
}

// Adjust appends a signed ledger entry on behalf of an operator. Withdraw
// adjustments are balance-checked like any other debit.
func (s *AdminService) Adjust(ctx context.Context, data AdjustmentDTO) (*models.LedgerEntry, error) {
	if data.Type != models.EntryKindDeposit && data.Type != models.EntryKindWithdraw {
		return nil, fmt.Errorf("%w: type must be deposit or withdraw", ErrInvalidRequest)
	}
	if data.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidRequest)
	}

	description := data.Description
	if description == "" {
		description = "Admin adjustment"
	}

	amount := data.Amount
	if data.Type == models.EntryKindWithdraw {
		amount = -data.Amount
	}

	var entry *models.LedgerEntry
	err := s.Balance.WithAccountLock(ctx, data.AccountID, func(tx *gorm.DB) error {
		if data.Type == models.EntryKindWithdraw {
			bal, err := sumEntries(tx, data.AccountID)
			if err != nil {
				return err
			}
			if bal < data.Amount {
				return ErrInsufficientFunds
			}
		}
		var err error
		entry, err = s.Balance.Append(tx, data.AccountID, data.Type, amount, description, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
