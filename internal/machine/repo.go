package machine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rattapoomjame/Sort/pkg/db/models"
	"github.com/rattapoomjame/Sort/pkg/enums"
	"gorm.io/gorm"
)

// HeartbeatPing carries the fields a device ping may update.
type HeartbeatPing struct {
	Firmware    *string
	CPUTemp     *float64
	StorageUsed *float64
	SeenAt      time.Time
}

// Repository manages machine_status and maintenance_logs persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, machineID string) (*models.MachineStatus, error)
	Save(ctx context.Context, status *models.MachineStatus) error
	Heartbeat(ctx context.Context, machineID string, ping HeartbeatPing) (int64, error)
	IncrementCount(ctx context.Context, machineID string, itemType enums.ItemType) error
	SetCounts(ctx context.Context, machineID string, glass, plastic, can int) error
	SetState(ctx context.Context, machineID string, state enums.MachineState) error
	MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error)
	CreateMaintenance(ctx context.Context, log *models.MaintenanceLog) error
	CloseOpenMaintenance(ctx context.Context, machineID string, endedAt time.Time) (int64, error)
	ListMaintenance(ctx context.Context, machineID string, limit int) ([]models.MaintenanceLog, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a machine repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context, machineID string) (*models.MachineStatus, error) {
	var status models.MachineStatus
	if err := r.db.WithContext(ctx).
		Where("machine_id = ?", machineID).
		First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *repository) Save(ctx context.Context, status *models.MachineStatus) error {
	return r.db.WithContext(ctx).Save(status).Error
}

// Heartbeat flips the machine online, stamps last_seen_at and stores the
// reported telemetry, skipping rows that are in maintenance so a ping cannot
// end a maintenance window.
func (r *repository) Heartbeat(ctx context.Context, machineID string, ping HeartbeatPing) (int64, error) {
	updates := map[string]any{
		"state":        enums.MachineStateOnline,
		"last_seen_at": ping.SeenAt,
		"updated_at":   ping.SeenAt,
	}
	if ping.Firmware != nil {
		updates["firmware"] = *ping.Firmware
	}
	if ping.CPUTemp != nil {
		updates["cpu_temp"] = *ping.CPUTemp
	}
	if ping.StorageUsed != nil {
		updates["storage_used"] = *ping.StorageUsed
	}
	result := r.db.WithContext(ctx).
		Model(&models.MachineStatus{}).
		Where("machine_id = ? AND state <> ?", machineID, enums.MachineStateMaintenance).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) IncrementCount(ctx context.Context, machineID string, itemType enums.ItemType) error {
	column, ok := counterColumn(itemType)
	if !ok {
		return gorm.ErrInvalidData
	}
	return r.db.WithContext(ctx).
		Model(&models.MachineStatus{}).
		Where("machine_id = ?", machineID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

func (r *repository) SetCounts(ctx context.Context, machineID string, glass, plastic, can int) error {
	return r.db.WithContext(ctx).
		Model(&models.MachineStatus{}).
		Where("machine_id = ?", machineID).
		Updates(map[string]any{
			"glass_count":   glass,
			"plastic_count": plastic,
			"can_count":     can,
			"storage_used":  nil,
		}).Error
}

func (r *repository) SetState(ctx context.Context, machineID string, state enums.MachineState) error {
	return r.db.WithContext(ctx).
		Model(&models.MachineStatus{}).
		Where("machine_id = ?", machineID).
		Update("state", state).Error
}

// MarkStaleOffline downgrades online machines whose heartbeat is older than cutoff.
func (r *repository) MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.MachineStatus{}).
		Where("state = ? AND (last_seen_at IS NULL OR last_seen_at < ?)", enums.MachineStateOnline, cutoff).
		Update("state", enums.MachineStateOffline)
	return result.RowsAffected, result.Error
}

func (r *repository) CreateMaintenance(ctx context.Context, log *models.MaintenanceLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *repository) CloseOpenMaintenance(ctx context.Context, machineID string, endedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.MaintenanceLog{}).
		Where("machine_id = ? AND ended_at IS NULL", machineID).
		Update("ended_at", endedAt)
	return result.RowsAffected, result.Error
}

func (r *repository) ListMaintenance(ctx context.Context, machineID string, limit int) ([]models.MaintenanceLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var logs []models.MaintenanceLog
	if err := r.db.WithContext(ctx).
		Where("machine_id = ?", machineID).
		Order("started_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func counterColumn(itemType enums.ItemType) (string, bool) {
	switch itemType {
	case enums.ItemTypeGlass:
		return "glass_count", true
	case enums.ItemTypePlastic:
		return "plastic_count", true
	case enums.ItemTypeCan:
		return "can_count", true
	}
	return "", false
}
