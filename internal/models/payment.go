package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment records one verified coin purchase with the gateway's response
// payload. GatewayPaymentID is unique so a retried verification cannot
// credit twice.
type Payment struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	Coins            int64          `gorm:"not null" json:"coins"`
	AmountMinor      int64          `gorm:"not null" json:"amount_minor"` // gateway amount in minor units
	Currency         string         `gorm:"size:3;default:'INR'" json:"currency"`
	GatewayOrderID   string         `gorm:"size:128;not null;uniqueIndex" json:"gateway_order_id"`
	GatewayPaymentID string         `gorm:"size:128;not null;uniqueIndex" json:"gateway_payment_id"`
	Status           string         `gorm:"size:20;not null;index" json:"status"` // COMPLETED | FAILED
	GatewayPayload   string         `gorm:"type:text" json:"-"`                   // raw gateway response JSON
	CompletedAt      *time.Time     `json:"completed_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
