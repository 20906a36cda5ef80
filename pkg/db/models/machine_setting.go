package models

import (
	"time"

	dbtypes "github.com/rattapoomjame/Sort/pkg/db/types"
)

// MachineSetting is the singleton pricing/config row. ID is pinned to 1 so
// reads and updates always target the same row.
type MachineSetting struct {
	ID                  int             `gorm:"column:id;primaryKey"`
	Pricing             dbtypes.Pricing `gorm:"column:pricing;type:jsonb;not null"`
	PointsPerBaht       int             `gorm:"column:points_per_baht;not null;default:100"`
	MinWithdrawalPoints int             `gorm:"column:min_withdrawal_points;not null;default:100"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (MachineSetting) TableName() string {
	return "machine_settings"
}

// SettingsRowID is the fixed primary key of the singleton settings row.
const SettingsRowID = 1
