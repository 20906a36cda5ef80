package models

import (
	"time"

	"github.com/google/uuid"
)

// UserPoints is the single-row-per-user balance. Every user has exactly one
// row, created in the same transaction as the user itself.
type UserPoints struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Points    int       `gorm:"column:points;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserPoints) TableName() string {
	return "user_points"
}
