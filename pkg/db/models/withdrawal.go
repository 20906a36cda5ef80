package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rattapoomjame/Sort/pkg/enums"
)

// Withdrawal is a points-to-cash request paid out over PromptPay. The points
// are deducted when the request is created, not when it is approved.
type Withdrawal struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	PointsUsed      int                    `gorm:"column:points_used;not null"`
	AmountBaht      int                    `gorm:"column:amount_baht;not null"`
	PromptPayNumber string                 `gorm:"column:promptpay_number;not null"`
	Status          enums.WithdrawalStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Note            *string                `gorm:"column:note"`
	ReviewedAt      *time.Time             `gorm:"column:reviewed_at"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
