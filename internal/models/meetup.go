package models

import (
	"time"

	"gorm.io/gorm"

	"campusmart/internal/domain"
)

type Meetup struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	BuyerID  uint  `gorm:"not null;index" json:"buyer_id"`
	SellerID uint  `gorm:"not null;index" json:"seller_id"`
	ItemID   uint  `gorm:"not null;index" json:"item_id"`
	OfferID  *uint `gorm:"index" json:"offer_id"` // nil when created directly without negotiation

	AgreedPrice   float64 `gorm:"not null" json:"agreed_price"`
	OriginalPrice float64 `gorm:"not null" json:"original_price"`

	Location           string     `gorm:"size:255;not null" json:"location"`
	LocationType       string     `gorm:"size:20;not null;default:'public'" json:"location_type"` // public | campus | doorstep
	PreferredTime      time.Time  `json:"preferred_time"`
	AlternativeTime    *time.Time `json:"alternative_time"`
	PaymentMethod      string     `gorm:"size:32" json:"payment_method"`
	BuyerNotes         string     `gorm:"type:text" json:"buyer_notes"`
	AcknowledgedSafety bool       `gorm:"not null;default:false" json:"acknowledged_safety"`

	// pending_meetup | meetup_scheduled | completed | failed | cancelled
	Status string `gorm:"size:20;not null;default:'meetup_scheduled';index" json:"status"`

	BuyerConfirmed     bool       `gorm:"not null;default:false" json:"buyer_confirmed"`
	BuyerConfirmedAt   *time.Time `json:"buyer_confirmed_at"`
	SellerConfirmed    bool       `gorm:"not null;default:false" json:"seller_confirmed"`
	SellerConfirmedAt  *time.Time `json:"seller_confirmed_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	CancellationReason string     `gorm:"size:255" json:"cancellation_reason,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Item   Item   `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Buyer  User   `gorm:"foreignKey:BuyerID" json:"-"`
	Seller User   `gorm:"foreignKey:SellerID" json:"-"`
	Offer  *Offer `gorm:"foreignKey:OfferID" json:"-"`
}

func (Meetup) TableName() string {
	return "meetups"
}

// IsOpen reports whether the meetup can still transition. pending_meetup and
// meetup_scheduled are equivalent for transition purposes.
func (m *Meetup) IsOpen() bool {
	return m.Status == domain.MeetupStatusPending || m.Status == domain.MeetupStatusScheduled
}

// RoleOf returns buyer/seller for the given user, or "" if the user is not a
// party to this meetup.
func (m *Meetup) RoleOf(userID uint) string {
	switch userID {
	case m.BuyerID:
		return domain.MeetupRoleBuyer
	case m.SellerID:
		return domain.MeetupRoleSeller
	}
	return ""
}

func (m *Meetup) BothConfirmed() bool {
	return m.BuyerConfirmed && m.SellerConfirmed
}
