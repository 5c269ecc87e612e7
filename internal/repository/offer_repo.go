package repository

import (
	"time"

	"campusmart/internal/domain"
	"campusmart/internal/models"

	"gorm.io/gorm"
)

type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) WithTx(tx *gorm.DB) *OfferRepository {
	return &OfferRepository{db: tx}
}

func (r *OfferRepository) Create(o *models.Offer) error {
	return r.db.Create(o).Error
}

func (r *OfferRepository) GetByID(id uint) (*models.Offer, error) {
	var o models.Offer
	if err := r.db.First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// SetRootID stamps the chain root on a freshly created root offer.
func (r *OfferRepository) SetRootID(id, rootID uint) error {
	return r.db.Model(&models.Offer{}).Where("id = ?", id).Update("root_id", rootID).Error
}

// TouchPending bumps updated_at on a still-pending offer. The guarded write
// takes the row lock, so a caller inserting chain members knows the parent
// was pending when its transaction committed.
func (r *OfferRepository) TouchPending(id uint, at time.Time) (int64, error) {
	res := r.db.Model(&models.Offer{}).
		Where("id = ? AND status = ?", id, domain.OfferStatusPending).
		Update("updated_at", at)
	return res.RowsAffected, res.Error
}

// MarkAccepted transitions pending → accepted. The status guard makes the
// transition race-safe: of two concurrent accepts, only one changes a row.
func (r *OfferRepository) MarkAccepted(id uint, at time.Time) (int64, error) {
	res := r.db.Model(&models.Offer{}).
		Where("id = ? AND status = ?", id, domain.OfferStatusPending).
		Updates(map[string]interface{}{"status": domain.OfferStatusAccepted, "accepted_at": at})
	return res.RowsAffected, res.Error
}

// MarkRejected transitions pending → rejected with a reason.
func (r *OfferRepository) MarkRejected(id uint, reason string, at time.Time) (int64, error) {
	res := r.db.Model(&models.Offer{}).
		Where("id = ? AND status = ?", id, domain.OfferStatusPending).
		Updates(map[string]interface{}{"status": domain.OfferStatusRejected, "rejection_reason": reason, "rejected_at": at})
	return res.RowsAffected, res.Error
}

// MarkCancelled transitions pending → cancelled.
func (r *OfferRepository) MarkCancelled(id uint, at time.Time) (int64, error) {
	res := r.db.Model(&models.Offer{}).
		Where("id = ? AND status = ?", id, domain.OfferStatusPending).
		Updates(map[string]interface{}{"status": domain.OfferStatusCancelled, "cancelled_at": at})
	return res.RowsAffected, res.Error
}

// MarkCompleted transitions accepted → completed once the linked meetup
// settles.
func (r *OfferRepository) MarkCompleted(id uint) (int64, error) {
	res := r.db.Model(&models.Offer{}).
		Where("id = ? AND status = ?", id, domain.OfferStatusAccepted).
		Update("status", domain.OfferStatusCompleted)
	return res.RowsAffected, res.Error
}

// CancelActive cancels an offer that is still pending or accepted. Used when
// the meetup built on it fails or is called off.
func (r *OfferRepository) CancelActive(id uint, at time.Time) (int64, error) {
	res := r.db.Model(&models.Offer{}).
		Where("id = ? AND status IN ?", id, []string{domain.OfferStatusPending, domain.OfferStatusAccepted}).
		Updates(map[string]interface{}{"status": domain.OfferStatusCancelled, "cancelled_at": at})
	return res.RowsAffected, res.Error
}

// RejectOtherPendingInChain rejects every still-pending offer in the chain
// except the given one. Used by the accept cascade.
func (r *OfferRepository) RejectOtherPendingInChain(rootID, exceptID uint, reason string, at time.Time) error {
	return r.db.Model(&models.Offer{}).
		Where("root_id = ? AND status = ? AND id != ?", rootID, domain.OfferStatusPending, exceptID).
		Updates(map[string]interface{}{"status": domain.OfferStatusRejected, "rejection_reason": reason, "rejected_at": at}).Error
}

// CancelPendingChildren cancels every still-pending counter-offer under the
// given root. Used when the root offer itself is cancelled.
func (r *OfferRepository) CancelPendingChildren(rootID uint, reason string, at time.Time) error {
	return r.db.Model(&models.Offer{}).
		Where("root_id = ? AND id != ? AND status = ?", rootID, rootID, domain.OfferStatusPending).
		Updates(map[string]interface{}{"status": domain.OfferStatusCancelled, "rejection_reason": reason, "cancelled_at": at}).Error
}

func (r *OfferRepository) ListChain(rootID uint) ([]models.Offer, error) {
	var list []models.Offer
	err := r.db.Where("root_id = ?", rootID).Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *OfferRepository) ListSent(userID uint, limit, offset int) ([]models.Offer, error) {
	var list []models.Offer
	err := r.db.Where("sender_id = ?", userID).Preload("Item").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *OfferRepository) ListReceived(userID uint, limit, offset int) ([]models.Offer, error) {
	var list []models.Offer
	err := r.db.Where("receiver_id = ?", userID).Preload("Item").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *OfferRepository) CountAcceptedInChain(rootID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Offer{}).
		Where("root_id = ? AND status = ?", rootID, domain.OfferStatusAccepted).Count(&n).Error
	return n, err
}
