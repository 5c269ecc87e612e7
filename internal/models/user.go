package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Username     string  `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string  `gorm:"size:255" json:"-"`
	GoogleID     *string `gorm:"uniqueIndex;size:255" json:"-"` // nil for email signups (avoids duplicate '' on unique index)
	Campus       string  `gorm:"size:128" json:"campus"`
	AvatarURL    string  `gorm:"size:512" json:"avatar_url"`
	Phone        string  `gorm:"size:20" json:"phone"`

	// Coin balance. Mutated only through the ledger service so every change
	// is paired with exactly one CoinTransaction row.
	Coins int64 `gorm:"not null;default:0" json:"coins"`

	// Cached marketplace counters, maintained best-effort on settlement.
	ItemsSold      int     `gorm:"not null;default:0" json:"items_sold"`
	ItemsBought    int     `gorm:"not null;default:0" json:"items_bought"`
	TotalEarnings  float64 `gorm:"not null;default:0" json:"total_earnings"`
	TotalSpent     float64 `gorm:"not null;default:0" json:"total_spent"`
	ActiveListings int     `gorm:"not null;default:0" json:"active_listings"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
