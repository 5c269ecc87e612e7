package repository

import (
	"time"

	"campusmart/internal/domain"
	"campusmart/internal/models"

	"gorm.io/gorm"
)

// openStatuses are the meetup states that still allow transitions.
var openStatuses = []string{domain.MeetupStatusPending, domain.MeetupStatusScheduled}

type MeetupRepository struct {
	db *gorm.DB
}

func NewMeetupRepository(db *gorm.DB) *MeetupRepository {
	return &MeetupRepository{db: db}
}

func (r *MeetupRepository) WithTx(tx *gorm.DB) *MeetupRepository {
	return &MeetupRepository{db: tx}
}

func (r *MeetupRepository) Create(m *models.Meetup) error {
	return r.db.Create(m).Error
}

func (r *MeetupRepository) GetByID(id uint) (*models.Meetup, error) {
	var m models.Meetup
	if err := r.db.First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MeetupRepository) GetByIDWithItem(id uint) (*models.Meetup, error) {
	var m models.Meetup
	if err := r.db.Preload("Item").First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MeetupRepository) Update(m *models.Meetup) error {
	return r.db.Save(m).Error
}

// SetConfirmed records one party's confirmation while the meetup is open.
func (r *MeetupRepository) SetConfirmed(id uint, role string, at time.Time) (int64, error) {
	updates := map[string]interface{}{}
	switch role {
	case domain.MeetupRoleBuyer:
		updates["buyer_confirmed"] = true
		updates["buyer_confirmed_at"] = at
	case domain.MeetupRoleSeller:
		updates["seller_confirmed"] = true
		updates["seller_confirmed_at"] = at
	}
	res := r.db.Model(&models.Meetup{}).
		Where("id = ? AND status IN ?", id, openStatuses).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// MarkCompleted transitions an open, dually-confirmed meetup to completed.
// The guard makes concurrent confirms settle exactly once: only the call
// that flips the row sees RowsAffected == 1.
func (r *MeetupRepository) MarkCompleted(id uint, at time.Time) (int64, error) {
	res := r.db.Model(&models.Meetup{}).
		Where("id = ? AND status IN ? AND buyer_confirmed = ? AND seller_confirmed = ?", id, openStatuses, true, true).
		Updates(map[string]interface{}{"status": domain.MeetupStatusCompleted, "completed_at": at})
	return res.RowsAffected, res.Error
}

// MarkFailed transitions an open meetup to failed.
func (r *MeetupRepository) MarkFailed(id uint, reason string, at time.Time) (int64, error) {
	res := r.db.Model(&models.Meetup{}).
		Where("id = ? AND status IN ?", id, openStatuses).
		Updates(map[string]interface{}{"status": domain.MeetupStatusFailed, "cancellation_reason": reason, "cancelled_at": at})
	return res.RowsAffected, res.Error
}

// MarkCancelled transitions an open meetup to cancelled.
func (r *MeetupRepository) MarkCancelled(id uint, reason string, at time.Time) (int64, error) {
	res := r.db.Model(&models.Meetup{}).
		Where("id = ? AND status IN ?", id, openStatuses).
		Updates(map[string]interface{}{"status": domain.MeetupStatusCancelled, "cancellation_reason": reason, "cancelled_at": at})
	return res.RowsAffected, res.Error
}

func (r *MeetupRepository) ListByUserID(userID uint, limit, offset int) ([]models.Meetup, error) {
	var list []models.Meetup
	err := r.db.Where("buyer_id = ? OR seller_id = ?", userID, userID).Preload("Item").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *MeetupRepository) GetOpenByOfferID(offerID uint) (*models.Meetup, error) {
	var m models.Meetup
	err := r.db.Where("offer_id = ? AND status IN ?", offerID, openStatuses).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}
