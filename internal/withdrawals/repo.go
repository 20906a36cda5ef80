package withdrawals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rattapoomjame/Sort/pkg/db/models"
	"github.com/rattapoomjame/Sort/pkg/enums"
	"gorm.io/gorm"
)

// Repository manages persistence for withdrawal requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, withdrawal *models.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error)
	List(ctx context.Context, params ListParams) ([]models.Withdrawal, error)
	Update(ctx context.Context, withdrawal *models.Withdrawal) error
	Summary(ctx context.Context, now time.Time) (Summary, error)
	CountByStatus(ctx context.Context, status enums.WithdrawalStatus) (int64, error)
	DeleteCompleted(ctx context.Context) (int64, error)
}

// ListParams narrow the withdrawal listing.
type ListParams struct {
	UserID uuid.UUID
	Status enums.WithdrawalStatus
	Limit  int
	Offset int
}

// Summary is the admin review-queue header.
type Summary struct {
	PendingCount         int64 `json:"pending_count"`
	PendingAmount        int64 `json:"pending_amount"`
	CompletedTodayCount  int64 `json:"completed_today_count"`
	CompletedTodayAmount int64 `json:"completed_today_amount"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a withdrawals repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, withdrawal *models.Withdrawal) error {
	if withdrawal.ID == uuid.Nil {
		withdrawal.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(withdrawal).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&withdrawal).Error; err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]models.Withdrawal, error) {
	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := r.db.WithContext(ctx).Model(&models.Withdrawal{})
	if params.UserID != uuid.Nil {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var withdrawals []models.Withdrawal
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(params.Offset).
		Find(&withdrawals).Error; err != nil {
		return nil, err
	}
	return withdrawals, nil
}

func (r *repository) Update(ctx context.Context, withdrawal *models.Withdrawal) error {
	return r.db.WithContext(ctx).Save(withdrawal).Error
}

// Summary aggregates the queue in two grouped scans rather than per-row math.
func (r *repository) Summary(ctx context.Context, now time.Time) (Summary, error) {
	var summary Summary

	type agg struct {
		Count  int64
		Amount int64
	}

	var pending agg
	if err := r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount_baht), 0) AS amount").
		Where("status = ?", enums.WithdrawalStatusPending).
		Scan(&pending).Error; err != nil {
		return summary, err
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var completed agg
	if err := r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount_baht), 0) AS amount").
		Where("status = ? AND reviewed_at >= ? AND reviewed_at < ?", enums.WithdrawalStatusCompleted, dayStart, dayEnd).
		Scan(&completed).Error; err != nil {
		return summary, err
	}

	summary.PendingCount = pending.Count
	summary.PendingAmount = pending.Amount
	summary.CompletedTodayCount = completed.Count
	summary.CompletedTodayAmount = completed.Amount
	return summary, nil
}

func (r *repository) CountByStatus(ctx context.Context, status enums.WithdrawalStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *repository) DeleteCompleted(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ?", enums.WithdrawalStatusCompleted).
		Delete(&models.Withdrawal{})
	return result.RowsAffected, result.Error
}
