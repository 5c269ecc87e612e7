package repository

import (
	"time"

	"campusmart/internal/models"

	"gorm.io/gorm"
)

// CoinRepository persists the append-only coin audit log and performs the
// guarded balance mutations on users.coins.
type CoinRepository struct {
	db *gorm.DB
}

func NewCoinRepository(db *gorm.DB) *CoinRepository {
	return &CoinRepository{db: db}
}

func (r *CoinRepository) WithTx(tx *gorm.DB) *CoinRepository {
	return &CoinRepository{db: tx}
}

func (r *CoinRepository) CreateEntry(e *models.CoinTransaction) error {
	return r.db.Create(e).Error
}

// AddBalance increments users.coins unconditionally. Returns rows changed (0
// means the user does not exist).
func (r *CoinRepository) AddBalance(userID uint, amount int64) (int64, error) {
	res := r.db.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("coins", gorm.Expr("coins + ?", amount))
	return res.RowsAffected, res.Error
}

// SubtractBalance decrements users.coins only when the balance covers the
// amount. The single-statement guard means concurrent debits cannot drive
// the balance negative.
func (r *CoinRepository) SubtractBalance(userID uint, amount int64) (int64, error) {
	res := r.db.Model(&models.User{}).Where("id = ? AND coins >= ?", userID, amount).
		UpdateColumn("coins", gorm.Expr("coins - ?", amount))
	return res.RowsAffected, res.Error
}

// Balance reads the current coin balance.
func (r *CoinRepository) Balance(userID uint) (int64, error) {
	var u models.User
	if err := r.db.Select("coins").First(&u, userID).Error; err != nil {
		return 0, err
	}
	return u.Coins, nil
}

func (r *CoinRepository) ListByUserID(userID uint, limit, offset int) ([]models.CoinTransaction, error) {
	var list []models.CoinTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// DeletePendingSince removes pending purchase audit rows of the given type
// created at or after the cutoff (same-day cleanup once a purchase settles).
func (r *CoinRepository) DeletePendingSince(userID uint, entryType string, since time.Time) error {
	return r.db.Where("user_id = ? AND type = ? AND created_at >= ?", userID, entryType, since).
		Delete(&models.CoinTransaction{}).Error
}
