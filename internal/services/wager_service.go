package services

import (
	"context"
	"fmt"
	"log"

	"prediction-wallet-service/internal/models"
	"prediction-wallet-service/pkg/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WagerService runs the reservation state machine: the stake is debited and
// committed locally before the odds API is called, then either bound to the
// accepted wager or compensated with a refund entry.
type WagerService struct {
	DB      *gorm.DB
	Balance *BalanceService
	Odds    *OddsClient
	Alerter *Alerter
}

func NewWagerService(db *gorm.DB, balance *BalanceService, odds *OddsClient, alerter *Alerter) *WagerService {
	return &WagerService{DB: db, Balance: balance, Odds: odds, Alerter: alerter}
}

type PlaceWagerDTO struct {
	MarketID  string
	Selection string
	Stake     float64
}

func (d PlaceWagerDTO) validate() error {
	if d.MarketID == "" {
		return fmt.Errorf("%w: marketId is required", ErrInvalidRequest)
	}
	if d.Selection != models.SelectionYes && d.Selection != models.SelectionNo {
		return fmt.Errorf("%w: selection must be yes or no", ErrInvalidRequest)
	}
	if d.Stake <= 0 {
		return fmt.Errorf("%w: stake must be greater than zero", ErrInvalidRequest)
	}
	return nil
}

// PlaceWager reserves the stake, submits the wager remotely and commits or
// refunds. The reservation is durably committed before the remote call so a
// crash mid-call leaves an inspectable reserved state, never a lost debit.
func (s *WagerService) PlaceWager(ctx context.Context, account *models.Account, data PlaceWagerDTO) (*models.Wager, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}

	// RESERVED: debit the stake under the account lock.
	var reservation *models.LedgerEntry
	err := s.Balance.WithAccountLock(ctx, account.ID, func(tx *gorm.DB) error {
		bal, err := sumEntries(tx, account.ID)
		if err != nil {
			return err
		}
		if bal < data.Stake {
			return ErrInsufficientFunds
		}
		reservation, err = s.Balance.Append(tx, account.ID, models.EntryKindWithdraw,
			-data.Stake, fmt.Sprintf("Wager stake on market %s", data.MarketID), nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	result, remoteErr := s.Odds.PlaceWager(ctx, PlaceWagerRequest{
		MarketID:   data.MarketID,
		Selection:  data.Selection,
		Stake:      data.Stake,
		AccountRef: account.ExternalID,
	})
	if remoteErr != nil {
		// REFUNDED: compensate with a new credit entry. The reservation
		// entry itself is never touched.
		s.refundReservation(ctx, account.ID, data)
		return nil, remoteErr
	}

	// COMMITTED: the remote system holds the bet from here on.
	odds := result.OddsYes
	if data.Selection == models.SelectionNo {
		odds = result.OddsNo
	}

	wager := models.Wager{
		ID:           result.WagerID,
		AccountID:    account.ID,
		MarketID:     data.MarketID,
		Selection:    data.Selection,
		Stake:        data.Stake,
		OddsYes:      result.OddsYes,
		OddsNo:       result.OddsNo,
		PotentialWin: data.Stake * odds,
		Status:       models.WagerStatusActive,
		MarketStatus: models.MarketStatusOpen,
	}

	if err := s.commitWager(&wager, reservation); err != nil {
		// The remote bet exists; reversing the local debit would
		// desynchronize us from the remote system's truth. Surface the gap
		// to operators instead.
		log.Printf("bookkeeping gap: remote wager %s accepted but local commit failed: %v", result.WagerID, err)
		s.Alerter.RecordGap(ctx, "wager", result.WagerID,
			fmt.Sprintf("remote wager accepted, local bookkeeping failed: %v", err))
	}

	return &wager, nil
}

func (s *WagerService) refundReservation(ctx context.Context, accountID uint, data PlaceWagerDTO) {
	err := s.Balance.WithAccountLock(ctx, accountID, func(tx *gorm.DB) error {
		_, err := s.Balance.Append(tx, accountID, models.EntryKindDeposit,
			data.Stake, fmt.Sprintf("Refund: wager on market %s not placed", data.MarketID), nil)
		return err
	})
	if err != nil {
		// A failed refund leaves a phantom debit. This is the one place the
		// ledger can visibly disagree with reality, so alert loudly.
		log.Printf("bookkeeping gap: refund append failed for account %d: %v", accountID, err)
		s.Alerter.RecordGap(ctx, "wager-refund", data.MarketID,
			fmt.Sprintf("refund of %.2f failed for account %d: %v", data.Stake, accountID, err))
	}
}

func (s *WagerService) commitWager(wager *models.Wager, reservation *models.LedgerEntry) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		// Opportunistic market upsert; status transitions stay with the
		// settlement reconciler.
		market := models.Market{
			ID:      wager.MarketID,
			Status:  models.MarketStatusOpen,
			OddsYes: wager.OddsYes,
			OddsNo:  wager.OddsNo,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"odds_yes", "odds_no", "updated_at"}),
		}).Create(&market).Error; err != nil {
			return err
		}

		if err := tx.Create(wager).Error; err != nil {
			return err
		}

		// Late-bind the reservation entry to the accepted wager. The
		// amount and snapshot stay immutable.
		return tx.Model(&models.LedgerEntry{}).
			Where("id = ?", reservation.ID).
			Update("wager_ref", wager.ID).Error
	})
}

type ListWagersDTO struct {
	AccountID uint
	Status    string
	Page      int
	Limit     int
}

func (s *WagerService) ListWagers(data ListWagersDTO) (common.PaginationResult, error) {
	limit := data.Limit
	if limit <= 0 {
		limit = 50
	}
	page := data.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := s.DB.Model(&models.Wager{}).Where("account_id = ?", data.AccountID)
	if data.Status != "" {
		query = query.Where("status = ?", data.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, err
	}

	var wagers []models.Wager
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&wagers).Error; err != nil {
		return common.PaginationResult{}, err
	}

	return common.PaginateResponse(wagers, total, page, limit, "Wagers fetched"), nil
}

// ListMarkets returns the locally known markets for the browsing surface.
func (s *WagerService) ListMarkets(status string) ([]models.Market, error) {
	var markets []models.Market
	query := s.DB.Order("updated_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&markets).Error; err != nil {
		return nil, err
	}
	return markets, nil
}
