package services

import (
	"context"

	"prediction-wallet-service/internal/cache"
	"prediction-wallet-service/internal/models"
	"prediction-wallet-service/pkg/common"

	"gorm.io/gorm"
)

// BalanceService owns the append-only ledger. Balances are derived from
// SUM(amount); the redis cache and the balance_after snapshots are
// conveniences, never ground truth.
type BalanceService struct {
	DB    *gorm.DB
	Cache *cache.BalanceCache
}

func NewBalanceService(db *gorm.DB, c *cache.BalanceCache) *BalanceService {
	return &BalanceService{DB: db, Cache: c}
}

// EnsureAccount resolves the identity provider's opaque subject to an
// account row, creating it on first reference.
func (s *BalanceService) EnsureAccount(externalID, name, email, phone string) (*models.Account, error) {
	var account models.Account
	err := s.DB.Where(models.Account{ExternalID: externalID}).
		Attrs(models.Account{Name: name, Email: email, Phone: phone}).
		FirstOrCreate(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetBalance returns the account's derived balance. Unknown accounts and
// accounts with no history are both 0, never an error.
func (s *BalanceService) GetBalance(ctx context.Context, accountID uint) (float64, error) {
	if bal, ok := s.Cache.Get(ctx, accountID); ok {
		return bal, nil
	}

	bal, err := sumEntries(s.DB, accountID)
	if err != nil {
		return 0, err
	}
	s.Cache.Set(ctx, accountID, bal)
	return bal, nil
}

// sumEntries derives the balance inside whatever transaction scope tx
// carries. Callers deciding a delta from this value must stay inside that
// same transaction.
func sumEntries(tx *gorm.DB, accountID uint) (float64, error) {
	var bal float64
	err := tx.Model(&models.LedgerEntry{}).
		Where("account_id = ?", accountID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&bal).Error
	return bal, err
}

// BalanceIn exposes the in-transaction balance read to the other flows.
func (s *BalanceService) BalanceIn(tx *gorm.DB, accountID uint) (float64, error) {
	return sumEntries(tx, accountID)
}

// WithAccountLock runs fn inside a transaction that holds a row lock on the
// account, serializing concurrent balance-affecting sequences for that
// account without touching any other account. The lock is taken by an
// atomic column bump, which every SQL engine turns into a row lock held
// until commit.
func (s *BalanceService) WithAccountLock(ctx context.Context, accountID uint, fn func(tx *gorm.DB) error) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Account{}).
			Where("id = ?", accountID).
			UpdateColumn("lock_version", gorm.Expr("lock_version + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return fn(tx)
	})

	// Committed entries changed the derived balance; drop the stale cache
	// whether or not fn appended anything.
	s.Cache.Invalidate(ctx, accountID)
	return err
}

// Append writes one immutable ledger entry inside the caller's transaction.
// balance_after is derived in the same transaction, so the snapshot chain
// stays consistent under the account lock. There is no funds check here;
// flows pre-check before debiting.
func (s *BalanceService) Append(tx *gorm.DB, accountID uint, kind string, amount float64, description string, wagerRef *string) (*models.LedgerEntry, error) {
	bal, err := sumEntries(tx, accountID)
	if err != nil {
		return nil, err
	}

	entry := models.LedgerEntry{
		AccountID:    accountID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: bal + amount,
		Description:  description,
		WagerRef:     wagerRef,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

type ListEntriesDTO struct {
	AccountID uint
	Kind      string
	Page      int
	Limit     int
}

// ListEntries pages through an account's ledger, newest first.
func (s *BalanceService) ListEntries(data ListEntriesDTO) (common.PaginationResult, error) {
	limit := data.Limit
	if limit <= 0 {
		limit = 50
	}
	page := data.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := s.DB.Model(&models.LedgerEntry{}).Where("account_id = ?", data.AccountID)
	if data.Kind != "" {
		query = query.Where("kind = ?", data.Kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, err
	}

	var entries []models.LedgerEntry
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return common.PaginationResult{}, err
	}

	return common.PaginateResponse(entries, total, page, limit, "Transactions fetched"), nil
}

// GetSummary aggregates an account's money movement for the profile page.
func (s *BalanceService) GetSummary(ctx context.Context, accountID uint) (map[string]interface{}, error) {
	balance, err := s.GetBalance(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var totalDeposits, totalWithdrawals, totalWinnings float64
	s.DB.Model(&models.LedgerEntry{}).
		Where("account_id = ? AND kind = ? AND amount > 0", accountID, models.EntryKindDeposit).
		Select("COALESCE(SUM(amount), 0)").Scan(&totalDeposits)
	s.DB.Model(&models.LedgerEntry{}).
		Where("account_id = ? AND kind = ? AND amount < 0", accountID, models.EntryKindWithdraw).
		Select("COALESCE(SUM(-amount), 0)").Scan(&totalWithdrawals)
	s.DB.Model(&models.LedgerEntry{}).
		Where("account_id = ? AND kind = ?", accountID, models.EntryKindWin).
		Select("COALESCE(SUM(amount), 0)").Scan(&totalWinnings)

	var activeWagers int64
	s.DB.Model(&models.Wager{}).
		Where("account_id = ? AND status = ?", accountID, models.WagerStatusActive).
		Count(&activeWagers)

	return map[string]interface{}{
		"balance":          balance,
		"totalDeposits":    totalDeposits,
		"totalWithdrawals": totalWithdrawals,
		"totalWinnings":    totalWinnings,
		"activeWagers":     activeWagers,
	}, nil
}
