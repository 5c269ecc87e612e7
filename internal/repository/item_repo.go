package repository

import (
	"campusmart/internal/domain"
	"campusmart/internal/models"

	"gorm.io/gorm"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) WithTx(tx *gorm.DB) *ItemRepository {
	return &ItemRepository{db: tx}
}

func (r *ItemRepository) Create(item *models.Item) error {
	return r.db.Create(item).Error
}

func (r *ItemRepository) GetByID(id uint) (*models.Item, error) {
	var item models.Item
	if err := r.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) Update(item *models.Item) error {
	return r.db.Save(item).Error
}

// SetStatus updates only the status column.
func (r *ItemRepository) SetStatus(id uint, status string) error {
	return r.db.Model(&models.Item{}).Where("id = ?", id).Update("status", status).Error
}

// SetStatusFrom transitions status only when the item is currently in one of
// the given states. Returns the number of rows changed so callers can detect
// a lost race.
func (r *ItemRepository) SetStatusFrom(id uint, to string, from ...string) (int64, error) {
	res := r.db.Model(&models.Item{}).Where("id = ? AND status IN ?", id, from).Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *ItemRepository) MarkSold(id uint) error {
	return r.db.Model(&models.Item{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": domain.ItemStatusSold, "sold_at": gorm.Expr("CURRENT_TIMESTAMP")}).Error
}

func (r *ItemRepository) ListActive(campus, category string, limit, offset int) ([]models.Item, error) {
	q := r.db.Where("status = ?", domain.ItemStatusActive)
	if campus != "" {
		q = q.Where("campus = ?", campus)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var list []models.Item
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *ItemRepository) ListByUserID(userID uint, limit, offset int) ([]models.Item, error) {
	var list []models.Item
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
