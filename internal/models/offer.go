package models

import (
	"time"

	"gorm.io/gorm"
)

// Offer is one step in a negotiation chain over an item. Counter-offers link
// back via ParentOfferID; RootID is set once at creation (a root offer points
// at itself) so cascades over a whole chain are a single indexed query.
type Offer struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	SenderID      uint    `gorm:"not null;index" json:"sender_id"`
	ReceiverID    uint    `gorm:"not null;index" json:"receiver_id"`
	ItemID        uint    `gorm:"not null;index" json:"item_id"`
	ParentOfferID *uint   `gorm:"index" json:"parent_offer_id"`
	RootID        uint    `gorm:"not null;index" json:"root_id"`
	Amount        float64 `gorm:"not null" json:"amount"`
	Message       string  `gorm:"type:text" json:"message"`
	// pending | accepted | rejected | cancelled | completed
	Status string `gorm:"size:20;not null;default:'pending';index" json:"status"`
	// initial | counter
	OfferType       string         `gorm:"size:10;not null" json:"offer_type"`
	RejectionReason string         `gorm:"size:255" json:"rejection_reason,omitempty"`
	AcceptedAt      *time.Time     `json:"accepted_at"`
	RejectedAt      *time.Time     `json:"rejected_at"`
	CancelledAt     *time.Time     `json:"cancelled_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Item     Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Sender   User `gorm:"foreignKey:SenderID" json:"-"`
	Receiver User `gorm:"foreignKey:ReceiverID" json:"-"`
}

func (Offer) TableName() string {
	return "offers"
}

func (o *Offer) IsRoot() bool {
	return o.ParentOfferID == nil
}
