package services

import (
	"context"
	"fmt"
	"log"

	"prediction-wallet-service/internal/models"
	"prediction-wallet-service/pkg/common"

	"gorm.io/gorm"
)

// PayoutService mirrors the wager reservation pattern for withdrawals: the
// debit lands first, the gateway call follows, and only a failed call is
// compensated. A payout the gateway accepted is never reversed locally.
type PayoutService struct {
	DB      *gorm.DB
	Balance *BalanceService
	Gateway *GatewayClient
	Alerter *Alerter
}

func NewPayoutService(db *gorm.DB, balance *BalanceService, gateway *GatewayClient, alerter *Alerter) *PayoutService {
	return &PayoutService{DB: db, Balance: balance, Gateway: gateway, Alerter: alerter}
}

type RequestPayoutDTO struct {
	Amount             float64
	BeneficiaryName    string
	BeneficiaryAccount string
	BeneficiaryIFSC    string
}

func (d RequestPayoutDTO) validate() error {
	if d.Amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidRequest)
	}
	if d.BeneficiaryName == "" || d.BeneficiaryAccount == "" || d.BeneficiaryIFSC == "" {
		return fmt.Errorf("%w: beneficiary name, account and IFSC are required", ErrInvalidRequest)
	}
	return nil
}

type PayoutResultDTO struct {
	OrderID string  `json:"orderId"`
	Amount  float64 `json:"amount"`
	Balance float64 `json:"balance"`
}

// RequestPayout debits the amount, submits the gateway transfer and records
// a best-effort tracking row. The tracking insert failing does not unwind
// anything: the gateway already confirmed the transfer.
func (s *PayoutService) RequestPayout(ctx context.Context, account *models.Account, data RequestPayoutDTO) (*PayoutResultDTO, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}

	orderID := common.GenerateOrderRef()

	// Optimistic reservation, committed before the gateway call.
	var debit *models.LedgerEntry
	err := s.Balance.WithAccountLock(ctx, account.ID, func(tx *gorm.DB) error {
		bal, err := sumEntries(tx, account.ID)
		if err != nil {
			return err
		}
		if bal < data.Amount {
			return ErrInsufficientFunds
		}
		debit, err = s.Balance.Append(tx, account.ID, models.EntryKindWithdraw,
			-data.Amount, fmt.Sprintf("Withdrawal, order %s", orderID), nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	result, remoteErr := s.Gateway.CreatePayout(ctx, PayoutRequest{
		OrderID:            orderID,
		Amount:             data.Amount,
		BeneficiaryName:    data.BeneficiaryName,
		BeneficiaryAccount: data.BeneficiaryAccount,
		BeneficiaryIFSC:    data.BeneficiaryIFSC,
	})
	if remoteErr != nil {
		s.refundDebit(ctx, account.ID, orderID, data.Amount)
		return nil, remoteErr
	}

	tracking := models.PendingPayout{
		OrderID:             orderID,
		AccountID:           account.ID,
		Amount:              data.Amount,
		BeneficiaryName:     data.BeneficiaryName,
		BeneficiaryAccount:  data.BeneficiaryAccount,
		BeneficiaryIFSC:     data.BeneficiaryIFSC,
		WalletTransactionID: debit.ID,
		Status:              models.PayoutStatusSubmitted,
		GatewayTxnID:        result.GatewayTxnID,
	}
	if err := s.DB.Create(&tracking).Error; err != nil {
		// Fire-and-log. The money has left via the gateway's success
		// response; a local insert hiccup must not pretend otherwise.
		log.Printf("bookkeeping gap: payout %s submitted but tracking insert failed: %v", orderID, err)
		s.Alerter.RecordGap(ctx, "payout", orderID,
			fmt.Sprintf("gateway payout accepted, tracking row insert failed: %v", err))
	}

	balance, _ := s.Balance.GetBalance(ctx, account.ID)
	return &PayoutResultDTO{OrderID: orderID, Amount: data.Amount, Balance: balance}, nil
}

func (s *PayoutService) refundDebit(ctx context.Context, accountID uint, orderID string, amount float64) {
	err := s.Balance.WithAccountLock(ctx, accountID, func(tx *gorm.DB) error {
		_, err := s.Balance.Append(tx, accountID, models.EntryKindDeposit,
			amount, fmt.Sprintf("Refund: withdrawal %s not submitted", orderID), nil)
		return err
	})
	if err != nil {
		log.Printf("bookkeeping gap: payout refund append failed for account %d: %v", accountID, err)
		s.Alerter.RecordGap(ctx, "payout-refund", orderID,
			fmt.Sprintf("refund of %.2f failed for account %d: %v", amount, accountID, err))
	}
}

type ListPayoutsDTO struct {
	AccountID uint
	Status    string
}

// ListPayouts returns an account's payout tracking rows.
func (s *PayoutService) ListPayouts(data ListPayoutsDTO) ([]models.PendingPayout, error) {
	var payouts []models.PendingPayout
	query := s.DB.Where("account_id = ?", data.AccountID).Order("created_at DESC")
	if data.Status != "" {
		query = query.Where("status = ?", data.Status)
	}
	if err := query.Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}
