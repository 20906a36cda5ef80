package settings

import (
	"context"

	"github.com/rattapoomjame/Sort/pkg/db/models"
	"gorm.io/gorm"
)

// Repository manages the singleton machine_settings row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context) (*models.MachineSetting, error)
	Save(ctx context.Context, setting *models.MachineSetting) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a settings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context) (*models.MachineSetting, error) {
	var setting models.MachineSetting
	if err := r.db.WithContext(ctx).
		Where("id = ?", models.SettingsRowID).
		First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *repository) Save(ctx context.Context, setting *models.MachineSetting) error {
	setting.ID = models.SettingsRowID
	return r.db.WithContext(ctx).Save(setting).Error
}
