package models

import (
	"time"

	"gorm.io/gorm"
)

// CoinTransaction is one row of the append-only coin audit log. Amount is
// signed (positive = credit, negative = debit); BalanceAfter snapshots the
// user's balance immediately after the row was applied. Rows are never
// updated, and only same-day coin_purchase_pending rows are ever deleted.
type CoinTransaction struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"not null;index" json:"user_id"`
	Amount int64 `gorm:"not null" json:"amount"`
	// welcome_bonus, item_listing, sale_completed, purchase_completed,
	// coin_purchase, coin_purchase_pending, coin_purchase_failed
	Type         string         `gorm:"size:32;not null;index" json:"type"`
	Description  string         `gorm:"size:255" json:"description"`
	ItemID       *uint          `gorm:"index" json:"item_id,omitempty"`
	BalanceAfter int64          `gorm:"not null" json:"balance_after"`
	Reference    string         `gorm:"size:128" json:"reference,omitempty"` // e.g. gateway order id on pending rows
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CoinTransaction) TableName() string {
	return "coin_transactions"
}
