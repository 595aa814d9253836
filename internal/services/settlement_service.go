package services

import (
	"context"
	"fmt"
	"time"

	"prediction-wallet-service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventMarketSettled is the only settlement event type this service
// consumes. Anything else on the settlement webhook is rejected, not
// ignored.
const EventMarketSettled = "market.settled"

type SettlementEvent struct {
	Event        string `json:"event"`
	MarketID     string `json:"marketId"`
	MarketStatus string `json:"marketStatus"`
	Outcome      string `json:"outcome"`
	Timestamp    int64  `json:"timestamp"`
}

type SettlementSummary struct {
	MarketID      string  `json:"marketId"`
	Winners       int     `json:"winners"`
	Losers        int     `json:"losers"`
	Credited      int     `json:"credited"`
	TotalCredited float64 `json:"totalCredited"`
}

// SettlementService resolves a market and credits winners exactly once.
// The whole handler is replay-safe: the market upsert and wager status
// writes are naturally idempotent, and the win-entry existence check makes
// the crediting side effect idempotent.
type SettlementService struct {
	DB      *gorm.DB
	Balance *BalanceService
}

func NewSettlementService(db *gorm.DB, balance *BalanceService) *SettlementService {
	return &SettlementService{DB: db, Balance: balance}
}

func (e SettlementEvent) validate() error {
	if e.Event != EventMarketSettled {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Event)
	}
	if e.MarketID == "" {
		return fmt.Errorf("%w: marketId is required", ErrInvalidRequest)
	}
	if e.Outcome != models.SelectionYes && e.Outcome != models.SelectionNo {
		return fmt.Errorf("%w: outcome must be yes or no", ErrInvalidRequest)
	}
	return nil
}

// ProcessSettlement executes the reconciliation as one transaction for the
// market. Winner accounts are locked one at a time inside that transaction,
// so unrelated accounts never serialize against each other.
func (s *SettlementService) ProcessSettlement(ctx context.Context, event SettlementEvent) (*SettlementSummary, error) {
	if err := event.validate(); err != nil {
		return nil, err
	}

	newStatus := event.MarketStatus
	if newStatus == "" {
		newStatus = models.MarketStatusSettled
	}

	summary := SettlementSummary{MarketID: event.MarketID}
	winnerIDs := map[uint]struct{}{}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		resolvedAt := time.Unix(event.Timestamp, 0)
		if event.Timestamp == 0 {
			resolvedAt = time.Now()
		}

		// Market status only moves forward; a replayed or stale event must
		// not drag a SETTLED market backwards.
		var existing models.Market
		found := tx.Where("id = ?", event.MarketID).First(&existing).Error == nil
		if found && !models.StatusAdvances(existing.Status, newStatus) {
			newStatus = existing.Status
		}

		market := models.Market{
			ID:         event.MarketID,
			Status:     newStatus,
			Outcome:    &event.Outcome,
			ResolvedAt: &resolvedAt,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "outcome", "resolved_at", "updated_at"}),
		}).Create(&market).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.Wager{}).
			Where("market_id = ? AND selection = ?", event.MarketID, event.Outcome).
			Updates(map[string]interface{}{
				"status":        models.WagerStatusWon,
				"market_status": newStatus,
				"settled_at":    now,
			}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Wager{}).
			Where("market_id = ? AND selection != ?", event.MarketID, event.Outcome).
			Updates(map[string]interface{}{
				"status":        models.WagerStatusLost,
				"market_status": newStatus,
				"settled_at":    now,
			}).Error; err != nil {
			return err
		}

		var winners []models.Wager
		if err := tx.Where("market_id = ? AND selection = ?", event.MarketID, event.Outcome).
			Find(&winners).Error; err != nil {
			return err
		}
		var loserCount int64
		tx.Model(&models.Wager{}).
			Where("market_id = ? AND selection != ?", event.MarketID, event.Outcome).
			Count(&loserCount)

		summary.Winners = len(winners)
		summary.Losers = int(loserCount)

		for _, wager := range winners {
			// The single most important invariant of the whole core: a win
			// is credited at most once per wager, however many times the
			// webhook is delivered.
			var existingCredits int64
			if err := tx.Model(&models.LedgerEntry{}).
				Where("wager_ref = ? AND kind = ?", wager.ID, models.EntryKindWin).
				Count(&existingCredits).Error; err != nil {
				return err
			}
			if existingCredits > 0 {
				continue
			}

			if _, ok := winnerIDs[wager.AccountID]; !ok {
				// Per-account row lock inside this transaction; unrelated
				// accounts are untouched.
				if err := tx.Model(&models.Account{}).
					Where("id = ?", wager.AccountID).
					UpdateColumn("lock_version", gorm.Expr("lock_version + 1")).Error; err != nil {
					return err
				}
				winnerIDs[wager.AccountID] = struct{}{}
			}

			if err := tx.Model(&models.Wager{}).
				Where("id = ?", wager.ID).
				Update("actual_payout", wager.PotentialWin).Error; err != nil {
				return err
			}

			wagerRef := wager.ID
			if _, err := s.Balance.Append(tx, wager.AccountID, models.EntryKindWin,
				wager.PotentialWin,
				fmt.Sprintf("Winnings for market %s", event.MarketID), &wagerRef); err != nil {
				return err
			}

			summary.Credited++
			summary.TotalCredited += wager.PotentialWin
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Winner balances changed; their cached values are stale.
	for accountID := range winnerIDs {
		s.Balance.Cache.Invalidate(ctx, accountID)
	}

	return &summary, nil
}
