package activity

import (
	"context"
	"time"

	"github.com/rattapoomjame/Sort/pkg/db/models"
	"github.com/rattapoomjame/Sort/pkg/enums"
	"gorm.io/gorm"
)

// Repository manages persistence for activity log rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, params ListParams) ([]models.ActivityLog, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ListParams narrow the activity feed query.
type ListParams struct {
	Type   enums.ActivityType
	Limit  int
	Offset int
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an activity repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context, params ListParams) ([]models.ActivityLog, error) {
	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}

	var entries []models.ActivityLog
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(params.Offset).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.ActivityLog{})
	return result.RowsAffected, result.Error
}
