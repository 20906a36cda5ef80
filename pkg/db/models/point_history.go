package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rattapoomjame/Sort/pkg/enums"
)

// PointHistory records one awarded deposit. Rows are immutable; the balance in
// user_points is the aggregate, this table is the audit trail.
type PointHistory struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index"`
	ItemType  enums.ItemType `gorm:"column:item_type;type:text;not null"`
	Points    int            `gorm:"column:points;not null"`
	MachineID string         `gorm:"column:machine_id;not null;default:'main'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (PointHistory) TableName() string {
	return "point_history"
}
