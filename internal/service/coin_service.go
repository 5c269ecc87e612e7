package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"campusmart/config"
	"campusmart/internal/domain"
	"campusmart/internal/models"
	"campusmart/internal/repository"
	"campusmart/pkg/payment"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	ErrCoinAmountOutOfRange = fmt.Errorf("coin amount must be between %d and %d", domain.MinCoinPurchase, domain.MaxCoinPurchase)
	ErrSignatureInvalid     = errors.New("payment signature verification failed")
	ErrDuplicatePayment     = errors.New("payment has already been processed")
)

// CoinService runs the two-phase coin purchase: create a gateway order, then
// verify the returned signature and credit the ledger. Verification is
// fail-closed and each gateway payment id credits at most once.
type CoinService struct {
	db       *gorm.DB
	ledger   *LedgerService
	payments *repository.PaymentRepository
	coins    *repository.CoinRepository
	gateway  payment.Gateway
	cfg      config.GatewayConfig
	log      zerolog.Logger
}

func NewCoinService(
	db *gorm.DB,
	ledger *LedgerService,
	payments *repository.PaymentRepository,
	coins *repository.CoinRepository,
	gateway payment.Gateway,
	cfg config.GatewayConfig,
	log zerolog.Logger,
) *CoinService {
	return &CoinService{
		db:       db,
		ledger:   ledger,
		payments: payments,
		coins:    coins,
		gateway:  gateway,
		cfg:      cfg,
		log:      log.With().Str("service", "coin").Logger(),
	}
}

// CreatePurchaseOrder is phase 1: create the gateway order and record a
// pending audit row (the coin count is not applied to the balance yet).
func (s *CoinService) CreatePurchaseOrder(ctx context.Context, userID uint, coins int64) (*payment.Order, error) {
	if coins < domain.MinCoinPurchase || coins > domain.MaxCoinPurchase {
		return nil, ErrCoinAmountOutOfRange
	}
	receipt := "coins_" + uuid.New().String()
	order, err := s.gateway.CreateOrder(ctx, coins*s.cfg.PaisePerCoin, s.cfg.Currency, receipt, map[string]string{
		"user_id": fmt.Sprintf("%d", userID),
		"coins":   fmt.Sprintf("%d", coins),
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.RecordAudit(userID, coins, domain.CoinReasonCoinPurchasePending,
		fmt.Sprintf("Pending purchase of %d coins", coins), order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

// VerifyAndCredit is phase 2. A bad signature aborts before any balance
// change and leaves a zero-amount failure row for reconciliation. On
// success the credit, the payment record and the pending-row cleanup commit
// together.
func (s *CoinService) VerifyAndCredit(ctx context.Context, userID uint, coins int64, orderID, paymentID, signature string) (*models.Payment, error) {
	if coins < domain.MinCoinPurchase || coins > domain.MaxCoinPurchase {
		return nil, ErrCoinAmountOutOfRange
	}
	if !s.gateway.VerifySignature(orderID, paymentID, signature) {
		if _, err := s.ledger.RecordAudit(userID, 0, domain.CoinReasonCoinPurchaseFailed,
			"Signature verification failed", orderID); err != nil {
			s.log.Error().Err(err).Uint("user_id", userID).Str("order_id", orderID).Msg("failed to record purchase failure")
		}
		return nil, ErrSignatureInvalid
	}
	if _, err := s.payments.GetByGatewayPaymentID(paymentID); err == nil {
		return nil, ErrDuplicatePayment
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	// An order credits once, even when the gateway retries with a fresh
	// payment id.
	if _, err := s.payments.GetByGatewayOrderID(orderID); err == nil {
		return nil, ErrDuplicatePayment
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Gateway call happens before the transaction opens so no lock is held
	// across network I/O. The payload is informational; a fetch failure does
	// not block the credit.
	payload := ""
	if details, err := s.gateway.FetchPayment(ctx, paymentID); err != nil {
		s.log.Warn().Err(err).Str("payment_id", paymentID).Msg("could not fetch gateway payment details")
	} else if b, err := json.Marshal(details); err == nil {
		payload = string(b)
	}

	now := time.Now()
	record := &models.Payment{
		UserID:           userID,
		Coins:            coins,
		AmountMinor:      coins * s.cfg.PaisePerCoin,
		Currency:         s.cfg.Currency,
		GatewayOrderID:   orderID,
		GatewayPaymentID: paymentID,
		Status:           "COMPLETED",
		GatewayPayload:   payload,
		CompletedAt:      &now,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.ledger.CreditTx(tx, userID, coins, domain.CoinReasonCoinPurchase,
			fmt.Sprintf("Purchased %d coins", coins), nil); err != nil {
			return err
		}
		// Unique index on gateway_payment_id backstops the duplicate check
		// under concurrent retries.
		if err := s.payments.WithTx(tx).Create(record); err != nil {
			return err
		}
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return s.coins.WithTx(tx).DeletePendingSince(userID, domain.CoinReasonCoinPurchasePending, dayStart)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
