package models

import (
	"time"

	"github.com/google/uuid"
)

// MaintenanceLog records one maintenance window on a machine. EndedAt is nil
// while the window is still open.
type MaintenanceLog struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MachineID string     `gorm:"column:machine_id;not null;index"`
	Note      string     `gorm:"column:note;not null"`
	StartedAt time.Time  `gorm:"column:started_at;not null"`
	EndedAt   *time.Time `gorm:"column:ended_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
