package service

import (
	"context"
	"testing"

	"campusmart/config"
	"campusmart/internal/domain"
	"campusmart/internal/models"
	"campusmart/internal/repository"
	"campusmart/pkg/payment"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCoinService(db *gorm.DB) (*CoinService, *payment.StubGateway) {
	gateway := payment.NewStubGateway("test-secret")
	cfg := config.GatewayConfig{Currency: "INR", PaisePerCoin: 100}
	svc := NewCoinService(db, newLedger(db),
		repository.NewPaymentRepository(db), repository.NewCoinRepository(db),
		gateway, cfg, zerolog.Nop())
	return svc, gateway
}

func TestCreatePurchaseOrderRecordsPending(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newCoinService(db)
	u := createTestUser(t, db, "alice", 0)

	order, err := svc.CreatePurchaseOrder(context.Background(), u.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), order.AmountMinor)
	assert.Equal(t, "INR", order.Currency)

	// Phase 1 leaves the balance alone and writes a pending audit row.
	assert.Equal(t, int64(0), userCoins(t, db, u.ID))
	var entry models.CoinTransaction
	require.NoError(t, db.Where("user_id = ?", u.ID).First(&entry).Error)
	assert.Equal(t, domain.CoinReasonCoinPurchasePending, entry.Type)
	assert.Equal(t, order.ID, entry.Reference)
}

func TestCreatePurchaseOrderBounds(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newCoinService(db)
	u := createTestUser(t, db, "bob", 0)

	_, err := svc.CreatePurchaseOrder(context.Background(), u.ID, domain.MinCoinPurchase-1)
	assert.ErrorIs(t, err, ErrCoinAmountOutOfRange)
	_, err = svc.CreatePurchaseOrder(context.Background(), u.ID, domain.MaxCoinPurchase+1)
	assert.ErrorIs(t, err, ErrCoinAmountOutOfRange)
}

func TestVerifyAndCreditBadSignature(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newCoinService(db)
	u := createTestUser(t, db, "carol", 0)

	order, err := svc.CreatePurchaseOrder(context.Background(), u.ID, 50)
	require.NoError(t, err)

	_, err = svc.VerifyAndCredit(context.Background(), u.ID, 50, order.ID, "pay_1", "tampered")
	assert.ErrorIs(t, err, ErrSignatureInvalid)

	// Fail-closed: no coins move, and a failure row marks the attempt.
	assert.Equal(t, int64(0), userCoins(t, db, u.ID))
	var entry models.CoinTransaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", u.ID, domain.CoinReasonCoinPurchaseFailed).First(&entry).Error)
	assert.Equal(t, int64(0), entry.Amount)
}

func TestVerifyAndCreditSuccess(t *testing.T) {
	db := setupTestDB(t)
	svc, gateway := newCoinService(db)
	u := createTestUser(t, db, "dave", 0)

	order, err := svc.CreatePurchaseOrder(context.Background(), u.ID, 50)
	require.NoError(t, err)

	sig := gateway.Sign(order.ID, "pay_1")
	record, err := svc.VerifyAndCredit(context.Background(), u.ID, 50, order.ID, "pay_1", sig)
	require.NoError(t, err)
	assert.Equal(t, int64(50), record.Coins)
	assert.Equal(t, int64(5000), record.AmountMinor)
	assert.Equal(t, "COMPLETED", record.Status)
	assert.NotNil(t, record.CompletedAt)

	assert.Equal(t, int64(50), userCoins(t, db, u.ID))

	// The pending row from phase 1 is cleaned up; the credit entry remains.
	var pending int64
	require.NoError(t, db.Model(&models.CoinTransaction{}).
		Where("user_id = ? AND type = ?", u.ID, domain.CoinReasonCoinPurchasePending).Count(&pending).Error)
	assert.Equal(t, int64(0), pending)
	var credit models.CoinTransaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", u.ID, domain.CoinReasonCoinPurchase).First(&credit).Error)
	assert.Equal(t, int64(50), credit.BalanceAfter)
}

func TestVerifyAndCreditDuplicatePayment(t *testing.T) {
	db := setupTestDB(t)
	svc, gateway := newCoinService(db)
	u := createTestUser(t, db, "eve", 0)

	order, err := svc.CreatePurchaseOrder(context.Background(), u.ID, 50)
	require.NoError(t, err)

	sig := gateway.Sign(order.ID, "pay_1")
	_, err = svc.VerifyAndCredit(context.Background(), u.ID, 50, order.ID, "pay_1", sig)
	require.NoError(t, err)

	// A replayed verification with the same gateway payment id must not
	// credit a second time.
	_, err = svc.VerifyAndCredit(context.Background(), u.ID, 50, order.ID, "pay_1", sig)
	assert.ErrorIs(t, err, ErrDuplicatePayment)
	assert.Equal(t, int64(50), userCoins(t, db, u.ID))

	var payments int64
	require.NoError(t, db.Model(&models.Payment{}).Where("user_id = ?", u.ID).Count(&payments).Error)
	assert.Equal(t, int64(1), payments)
}

func TestVerifyAndCreditDuplicateOrder(t *testing.T) {
	db := setupTestDB(t)
	svc, gateway := newCoinService(db)
	u := createTestUser(t, db, "frank", 0)

	order, err := svc.CreatePurchaseOrder(context.Background(), u.ID, 50)
	require.NoError(t, err)

	sig := gateway.Sign(order.ID, "pay_1")
	_, err = svc.VerifyAndCredit(context.Background(), u.ID, 50, order.ID, "pay_1", sig)
	require.NoError(t, err)

	// A gateway retry with a fresh payment id on an already-credited order
	// must be refused too.
	sig2 := gateway.Sign(order.ID, "pay_2")
	_, err = svc.VerifyAndCredit(context.Background(), u.ID, 50, order.ID, "pay_2", sig2)
	assert.ErrorIs(t, err, ErrDuplicatePayment)
	assert.Equal(t, int64(50), userCoins(t, db, u.ID))
}
