package repository

import (
	"campusmart/internal/models"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) WithTx(tx *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: tx}
}

func (r *TransactionRepository) Create(t *models.Transaction) error {
	return r.db.Create(t).Error
}

func (r *TransactionRepository) GetByMeetupID(meetupID uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.db.Where("meetup_id = ?", meetupID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) CountByMeetupID(meetupID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Transaction{}).Where("meetup_id = ?", meetupID).Count(&n).Error
	return n, err
}

func (r *TransactionRepository) ListByUserID(userID uint, limit, offset int) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
