package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskCompletion is an append-only ledger entry; rows are never updated.
type TaskCompletion struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TaskID       uuid.UUID `gorm:"type:uuid;not null;index" json:"task_id"`
	PointsEarned int64     `gorm:"not null" json:"points_earned"`
	CompletedAt  time.Time `gorm:"not null;index" json:"completed_at"`

	User User `gorm:"foreignkey:UserID" json:"user,omitempty"`
	Task Task `gorm:"foreignkey:TaskID" json:"task,omitempty"`
}

func (tc *TaskCompletion) BeforeCreate(tx *gorm.DB) error {
	if tc.ID == uuid.Nil {
		tc.ID = uuid.New()
	}
	return nil
}
