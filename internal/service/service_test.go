package service

import (
	"path/filepath"
	"testing"

	"campusmart/internal/database"
	"campusmart/internal/domain"
	"campusmart/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, coins int64) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@campus.test",
		Coins:    coins,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createTestItem(t *testing.T, db *gorm.DB, ownerID uint, price float64) *models.Item {
	t.Helper()
	item := &models.Item{
		UserID: ownerID,
		Title:  "Used textbook",
		Price:  price,
		Status: domain.ItemStatusActive,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func userCoins(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var u models.User
	require.NoError(t, db.First(&u, userID).Error)
	return u.Coins
}
