package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task types mirror the seeded catalog: login, referral, daily and custom.
type Task struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	Type          string    `gorm:"size:20;not null;default:'custom'" json:"type"`
	Points        int64     `gorm:"not null" json:"points"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	IsRepeatable  bool      `gorm:"not null;default:false" json:"is_repeatable"`
	CooldownHours int       `gorm:"not null;default:0" json:"cooldown_hours"`
	CreatedBy     string    `gorm:"size:255" json:"created_by"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
