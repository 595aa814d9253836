package services

import (
	"testing"

	"prediction-wallet-service/internal/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestEnsureAccountIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	balance := newTestBalance(db)

	first, err := balance.EnsureAccount("sub-1", "Asha", "asha@example.com", "")
	if err != nil {
		t.Fatalf("EnsureAccount failed: %v", err)
	}
	second, err := balance.EnsureAccount("sub-1", "Different Name", "other@example.com", "")
	if err != nil {
		t.Fatalf("EnsureAccount failed on second call: %v", err)
	}

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Asha", second.Name, "attrs must not overwrite the existing row")

	var count int64
	db.Model(&models.Account{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGetBalanceUnknownAccountIsZero(t *testing.T) {
	db := newTestDB(t)
	balance := newTestBalance(db)

	bal, err := balance.GetBalance(t.Context(), 9999)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	assert.Equal(t, 0.0, bal)
}

func TestBalanceEqualsSumOfEntries(t *testing.T) {
	db := newTestDB(t)
	balance := newTestBalance(db)
	account := createTestAccount(t, balance, "sub-sum")

	amounts := []float64{100, -30, 60, -130, 25}
	kinds := []string{
		models.EntryKindDeposit,
		models.EntryKindWithdraw,
		models.EntryKindWin,
		models.EntryKindWithdraw,
		models.EntryKindDeposit,
	}

	running := 0.0
	for i, amount := range amounts {
		running += amount
		err := balance.WithAccountLock(t.Context(), account.ID, func(tx *gorm.DB) error {
			entry, err := balance.Append(tx, account.ID, kinds[i], amount, "test entry", nil)
			if err != nil {
				return err
			}
			assert.Equal(t, running, entry.BalanceAfter, "snapshot must equal prior sum plus amount")
			return nil
		})
		if err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}

		bal, err := balance.GetBalance(t.Context(), account.ID)
		if err != nil {
			t.Fatalf("GetBalance failed: %v", err)
		}
		assert.Equal(t, running, bal, "derived balance must equal the sum of all entries")
	}
}

func TestWithAccountLockUnknownAccount(t *testing.T) {
	db := newTestDB(t)
	balance := newTestBalance(db)

	err := balance.WithAccountLock(t.Context(), 4242, func(tx *gorm.DB) error {
		t.Fatal("callback must not run for a missing account")
		return nil
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListEntriesPagination(t *testing.T) {
	db := newTestDB(t)
	balance := newTestBalance(db)
	account := createTestAccount(t, balance, "sub-list")

	for i := 0; i < 5; i++ {
		err := balance.WithAccountLock(t.Context(), account.ID, func(tx *gorm.DB) error {
			_, err := balance.Append(tx, account.ID, models.EntryKindDeposit, 10, "credit", nil)
			return err
		})
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	result, err := balance.ListEntries(ListEntriesDTO{AccountID: account.ID, Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	assert.Equal(t, int64(5), result.Count)
	assert.Equal(t, 3, result.LastPage)
	assert.Equal(t, 2, result.NextPage)

	entries := result.Data.([]models.LedgerEntry)
	assert.Len(t, entries, 2)
	assert.Greater(t, entries[0].ID, entries[1].ID, "newest first")
}

func TestGetSummaryAggregates(t *testing.T) {
	db := newTestDB(t)
	balance := newTestBalance(db)
	account := createTestAccount(t, balance, "sub-summary")

	err := balance.WithAccountLock(t.Context(), account.ID, func(tx *gorm.DB) error {
		if _, err := balance.Append(tx, account.ID, models.EntryKindDeposit, 100, "", nil); err != nil {
			return err
		}
		if _, err := balance.Append(tx, account.ID, models.EntryKindWithdraw, -40, "", nil); err != nil {
			return err
		}
		_, err := balance.Append(tx, account.ID, models.EntryKindWin, 25, "", nil)
		return err
	})
	if err != nil {
		t.Fatalf("seed entries failed: %v", err)
	}

	summary, err := balance.GetSummary(t.Context(), account.ID)
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	assert.Equal(t, 85.0, summary["balance"])
	assert.Equal(t, 100.0, summary["totalDeposits"])
	assert.Equal(t, 40.0, summary["totalWithdrawals"])
	assert.Equal(t, 25.0, summary["totalWinnings"])
}
