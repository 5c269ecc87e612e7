package models

import (
	"time"

	"gorm.io/gorm"
)

type Item struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	UserID      uint    `gorm:"not null;index" json:"user_id"`
	Title       string  `gorm:"size:255;not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"not null" json:"price"`
	Category    string  `gorm:"size:64;index" json:"category"`
	Condition   string  `gorm:"size:32" json:"condition"`
	Campus      string  `gorm:"size:128;index" json:"campus"`
	// active | reserved | sold | inactive
	Status    string         `gorm:"size:20;not null;default:'active';index" json:"status"`
	SoldAt    *time.Time     `json:"sold_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Item) TableName() string {
	return "items"
}
