package service

import (
	"fmt"
	"sync"
	"testing"

	"campusmart/internal/domain"
	"campusmart/internal/models"
	"campusmart/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLedger(db *gorm.DB) *LedgerService {
	return NewLedgerService(db, repository.NewCoinRepository(db), zerolog.Nop())
}

func TestCreditAndDebit(t *testing.T) {
	db := setupTestDB(t)
	ledger := newLedger(db)
	u := createTestUser(t, db, "alice", 0)

	entry, err := ledger.Credit(u.ID, 100, domain.CoinReasonCoinPurchase, "Purchased 100 coins", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(100), entry.Amount)
	assert.Equal(t, int64(100), entry.BalanceAfter)

	entry, err = ledger.Debit(u.ID, 40, domain.CoinReasonItemListing, "Listing fee", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(-40), entry.Amount)
	assert.Equal(t, int64(60), entry.BalanceAfter)

	balance, err := ledger.Balance(u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), balance)

	history, err := ledger.History(u.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(-40), history[0].Amount) // newest first
}

func TestDebitInsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	ledger := newLedger(db)
	u := createTestUser(t, db, "bob", 50)

	_, err := ledger.Debit(u.ID, 100, domain.CoinReasonItemListing, "Listing fee", nil)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Balance and audit log are untouched by the failed debit.
	assert.Equal(t, int64(50), userCoins(t, db, u.ID))
	history, err := ledger.History(u.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLedgerInvalidAmount(t *testing.T) {
	db := setupTestDB(t)
	ledger := newLedger(db)
	u := createTestUser(t, db, "carol", 10)

	_, err := ledger.Credit(u.ID, 0, domain.CoinReasonCoinPurchase, "", nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ledger.Debit(u.ID, -5, domain.CoinReasonItemListing, "", nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestLedgerUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	ledger := newLedger(db)

	_, err := ledger.Credit(9999, 10, domain.CoinReasonCoinPurchase, "", nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = ledger.Debit(9999, 10, domain.CoinReasonItemListing, "", nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRecordAuditDoesNotTouchBalance(t *testing.T) {
	db := setupTestDB(t)
	ledger := newLedger(db)
	u := createTestUser(t, db, "dave", 30)

	entry, err := ledger.RecordAudit(u.ID, 50, domain.CoinReasonCoinPurchasePending, "Pending purchase of 50 coins", "order_123")
	require.NoError(t, err)
	assert.Equal(t, int64(30), entry.BalanceAfter)
	assert.Equal(t, "order_123", entry.Reference)
	assert.Equal(t, int64(30), userCoins(t, db, u.ID))
}

func TestConcurrentDebits(t *testing.T) {
	db := setupTestDB(t)
	ledger := newLedger(db)
	u := createTestUser(t, db, "eve", 50)

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(n int) {
			defer wg.Done()
			_, err := ledger.Debit(u.ID, 10, domain.CoinReasonItemListing, fmt.Sprintf("debit %d", n), nil)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err == nil {
			successCount++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientBalance)
		}
	}

	// Balance 50 covers exactly five debits of 10; the guard rejects the rest.
	assert.Equal(t, 5, successCount)
	assert.Equal(t, int64(0), userCoins(t, db, u.ID))

	var entries int64
	require.NoError(t, db.Model(&models.CoinTransaction{}).Where("user_id = ?", u.ID).Count(&entries).Error)
	assert.Equal(t, int64(5), entries)
}
