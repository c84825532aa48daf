package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PayoutStatusPending   = "pending"
	PayoutStatusCompleted = "completed"
	PayoutStatusRejected  = "rejected"
	PayoutStatusCancelled = "cancelled"
)

// PointsPerCurrencyUnit is the fixed exchange rate: 10 points = 1 peso.
const PointsPerCurrencyUnit = 10

type Payout struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount      float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	PointsUsed  int64     `gorm:"not null" json:"points_used"`
	GcashNumber string    `gorm:"size:11;not null" json:"gcash_number"`
	Status      string    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Notes       *string   `gorm:"type:text" json:"notes"`

	ProcessedBy *uuid.UUID `gorm:"type:uuid" json:"processed_by"`
	RequestedAt time.Time  `gorm:"not null" json:"requested_at"`
	ProcessedAt *time.Time `json:"processed_at"`

	User User `gorm:"foreignkey:UserID" json:"user,omitempty"`
}

func (p *Payout) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
