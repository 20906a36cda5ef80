package models

import (
	"time"

	"github.com/rattapoomjame/Sort/pkg/enums"
)

// MachineStatus tracks one physical sorting machine: its liveness and the
// per-material counters incremented on every accepted deposit.
type MachineStatus struct {
	MachineID    string             `gorm:"column:machine_id;primaryKey"`
	State        enums.MachineState `gorm:"column:state;type:text;not null;default:'offline'"`
	GlassCount   int                `gorm:"column:glass_count;not null;default:0"`
	PlasticCount int                `gorm:"column:plastic_count;not null;default:0"`
	CanCount     int                `gorm:"column:can_count;not null;default:0"`
	MaxBottles   int                `gorm:"column:max_bottles;not null;default:500"`
	CPUTemp      *float64           `gorm:"column:cpu_temp"`
	StorageUsed  *float64           `gorm:"column:storage_used"`
	Firmware     *string            `gorm:"column:firmware"`
	LastSeenAt   *time.Time         `gorm:"column:last_seen_at"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (MachineStatus) TableName() string {
	return "machine_status"
}

// TotalBottles sums the per-material counters.
func (m MachineStatus) TotalBottles() int {
	return m.GlassCount + m.PlasticCount + m.CanCount
}

// StorageRatio is the bin fill level in [0,1]. The device-reported figure
// wins; without one it is derived from the counters against max_bottles.
func (m MachineStatus) StorageRatio() float64 {
	if m.StorageUsed != nil {
		return *m.StorageUsed
	}
	if m.MaxBottles <= 0 {
		return 0
	}
	ratio := float64(m.TotalBottles()) / float64(m.MaxBottles)
	if ratio > 1 {
		return 1
	}
	return ratio
}
