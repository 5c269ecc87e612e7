package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is the immutable settlement record written exactly once when a
// meetup reaches completed. It is the source of truth for a sale; the cached
// counters on User are derived from it best-effort.
type Transaction struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	BuyerID     uint           `gorm:"not null;index" json:"buyer_id"`
	SellerID    uint           `gorm:"not null;index" json:"seller_id"`
	ItemID      uint           `gorm:"not null;index" json:"item_id"`
	MeetupID    uint           `gorm:"not null;uniqueIndex" json:"meetup_id"`
	Amount      float64        `gorm:"not null" json:"amount"`
	Status      string         `gorm:"size:20;not null;default:'completed'" json:"status"`
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Buyer  User `gorm:"foreignKey:BuyerID" json:"-"`
	Seller User `gorm:"foreignKey:SellerID" json:"-"`
	Item   Item `gorm:"foreignKey:ItemID" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}
