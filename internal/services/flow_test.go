package services

import (
	"testing"

	"prediction-wallet-service/internal/models"

	"github.com/stretchr/testify/assert"
)

// TestWalletLifecycle walks one account through the whole system: funding,
// staking, winning and cashing out, asserting the derived balance at every
// step.
func TestWalletLifecycle(t *testing.T) {
	db := newTestDB(t)
	balance := newTestBalance(db)

	oddsServer := fakeOddsServer(t, "odds-key", 2.0, 1.8)
	defer oddsServer.Close()
	gatewayServer := fakeGateway(t)
	defer gatewayServer.Close()

	gateway := NewGatewayClient(gatewayServer.URL, "api-key", "api-secret", "salt")
	alerter := NewAlerter(db, nil)

	admin := NewAdminService(db, balance)
	wagers := NewWagerService(db, balance, NewOddsClient(oddsServer.URL, "odds-key"), alerter)
	settlement := NewSettlementService(db, balance)
	payouts := NewPayoutService(db, balance, gateway, alerter)

	account := createTestAccount(t, balance, "sub-lifecycle")

	bal, _ := balance.GetBalance(t.Context(), account.ID)
	assert.Equal(t, 0.0, bal)

	// Admin funds the account.
	_, err := admin.Adjust(t.Context(), AdjustmentDTO{
		AccountID: account.ID, Type: models.EntryKindDeposit, Amount: 100,
	})
	if err != nil {
		t.Fatalf("admin deposit failed: %v", err)
	}
	bal, _ = balance.GetBalance(t.Context(), account.ID)
	assert.Equal(t, 100.0, bal)

	// Stake 30 on yes at odds 2.0.
	wager, err := wagers.PlaceWager(t.Context(), account, PlaceWagerDTO{
		MarketID: "m1", Selection: models.SelectionYes, Stake: 30,
	})
	if err != nil {
		t.Fatalf("PlaceWager failed: %v", err)
	}
	assert.Equal(t, models.WagerStatusActive, wager.Status)
	assert.Equal(t, 60.0, wager.PotentialWin)
	bal, _ = balance.GetBalance(t.Context(), account.ID)
	assert.Equal(t, 70.0, bal)

	// The market settles in the account's favor.
	_, err = settlement.ProcessSettlement(t.Context(), SettlementEvent{
		Event: EventMarketSettled, MarketID: "m1", Outcome: models.SelectionYes,
	})
	if err != nil {
		t.Fatalf("ProcessSettlement failed: %v", err)
	}
	bal, _ = balance.GetBalance(t.Context(), account.ID)
	assert.Equal(t, 130.0, bal)

	var settled models.Wager
	db.Where("id = ?", wager.ID).First(&settled)
	assert.Equal(t, models.WagerStatusWon, settled.Status)
	if assert.NotNil(t, settled.ActualPayout) {
		assert.Equal(t, 60.0, *settled.ActualPayout)
	}

	// Withdraw everything.
	result, err := payouts.RequestPayout(t.Context(), account, RequestPayoutDTO{
		Amount:             130,
		BeneficiaryName:    "Asha Rao",
		BeneficiaryAccount: "1234567890",
		BeneficiaryIFSC:    "HDFC0001234",
	})
	if err != nil {
		t.Fatalf("RequestPayout failed: %v", err)
	}
	assert.Equal(t, 0.0, result.Balance)

	bal, _ = balance.GetBalance(t.Context(), account.ID)
	assert.Equal(t, 0.0, bal)

	// Every snapshot on the way matches the running sum.
	var entries []models.LedgerEntry
	db.Where("account_id = ?", account.ID).Order("id ASC").Find(&entries)
	running := 0.0
	for _, entry := range entries {
		running += entry.Amount
		assert.Equal(t, running, entry.BalanceAfter)
	}
	assert.Equal(t, 0.0, running)
}

func TestConsistencyCheckFindsDrift(t *testing.T) {
	db := newTestDB(t)
	balance := newTestBalance(db)
	payments := NewPaymentService(db, balance, NewGatewayClient("http://unused", "k", "s", "x"), NewAlerter(db, nil), 1.0)
	svc := NewConsistencyService(db, balance, payments, NewAlerter(db, nil), 0)

	clean := createTestAccount(t, balance, "sub-clean")
	seedDeposit(t, db, balance, clean.ID, 50)

	mismatches, err := svc.CheckBalances(t.Context())
	if err != nil {
		t.Fatalf("CheckBalances failed: %v", err)
	}
	assert.Equal(t, 0, mismatches)

	// Corrupt a snapshot directly; the sweep must notice and alert.
	drifted := createTestAccount(t, balance, "sub-drift")
	seedDeposit(t, db, balance, drifted.ID, 50)
	db.Model(&models.LedgerEntry{}).
		Where("account_id = ?", drifted.ID).
		UpdateColumn("balance_after", 999.0)

	mismatches, err = svc.CheckBalances(t.Context())
	if err != nil {
		t.Fatalf("CheckBalances failed: %v", err)
	}
	assert.Equal(t, 1, mismatches)

	var gaps int64
	db.Model(&models.WebhookLog{}).Where("request_type = ?", "ReconciliationGap").Count(&gaps)
	assert.Equal(t, int64(1), gaps)
}
