package service

import (
	"testing"

	"campusmart/internal/domain"
	"campusmart/internal/models"
	"campusmart/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newItemService(db *gorm.DB) *ItemService {
	return NewItemService(db, repository.NewItemRepository(db), repository.NewUserRepository(db), newLedger(db), zerolog.Nop())
}

func TestCreateItemChargesListingFee(t *testing.T) {
	db := setupTestDB(t)
	svc := newItemService(db)
	u := createTestUser(t, db, "seller", 10)

	item, err := svc.Create(&models.Item{
		UserID: u.ID,
		Title:  "Desk lamp",
		Price:  300,
		Status: domain.ItemStatusActive,
	})
	require.NoError(t, err)
	assert.NotZero(t, item.ID)

	assert.Equal(t, int64(10-domain.ListingFeeCoins), userCoins(t, db, u.ID))
	var entry models.CoinTransaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", u.ID, domain.CoinReasonItemListing).First(&entry).Error)
	assert.Equal(t, int64(-domain.ListingFeeCoins), entry.Amount)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, u.ID).Error)
	assert.Equal(t, 1, reloaded.ActiveListings)
}

func TestCreateItemInsufficientCoins(t *testing.T) {
	db := setupTestDB(t)
	svc := newItemService(db)
	u := createTestUser(t, db, "broke", 0)

	_, err := svc.Create(&models.Item{
		UserID: u.ID,
		Title:  "Desk lamp",
		Price:  300,
		Status: domain.ItemStatusActive,
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// The whole listing rolls back with the failed fee debit.
	var items int64
	require.NoError(t, db.Model(&models.Item{}).Where("user_id = ?", u.ID).Count(&items).Error)
	assert.Equal(t, int64(0), items)
}

func TestDeactivateItem(t *testing.T) {
	db := setupTestDB(t)
	svc := newItemService(db)
	u := createTestUser(t, db, "seller", 10)
	other := createTestUser(t, db, "other", 10)

	item, err := svc.Create(&models.Item{
		UserID: u.ID,
		Title:  "Desk lamp",
		Price:  300,
		Status: domain.ItemStatusActive,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Deactivate(item.ID, other.ID), ErrNotItemOwner)
	require.NoError(t, svc.Deactivate(item.ID, u.ID))

	var reloaded models.Item
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.Equal(t, domain.ItemStatusInactive, reloaded.Status)

	// Already inactive, the guarded transition refuses a repeat.
	assert.ErrorIs(t, svc.Deactivate(item.ID, u.ID), ErrItemNotActive)
}
