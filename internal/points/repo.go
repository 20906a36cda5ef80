package points

import (
	"context"

	"github.com/google/uuid"
	"github.com/rattapoomjame/Sort/pkg/db/models"
	"gorm.io/gorm"
)

// Repository manages user balances and the point_history audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetBalance(ctx context.Context, userID uuid.UUID) (int, error)
	AddPoints(ctx context.Context, userID uuid.UUID, delta int) error
	SetPoints(ctx context.Context, userID uuid.UUID, points int) error
	DeductIfEnough(ctx context.Context, userID uuid.UUID, amount int) (bool, error)
	CreateHistory(ctx context.Context, entry *models.PointHistory) error
	ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.PointHistory, error)
	CountHistory(ctx context.Context) (int64, error)
	TotalPoints(ctx context.Context) (int64, error)
	TotalStats(ctx context.Context) (TotalStats, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	ResetAllBalances(ctx context.Context) (int64, error)
}

// TotalStats aggregates every balance for the public stats screen.
type TotalStats struct {
	Members int64   `json:"members"`
	Total   int64   `json:"total"`
	Min     int     `json:"min"`
	Max     int     `json:"max"`
	Average float64 `json:"average"`
}

// LeaderboardEntry is one ranked row of the public leaderboard.
type LeaderboardEntry struct {
	Phone  string `json:"phone"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a points repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	var row models.UserPoints
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).Error; err != nil {
		return 0, err
	}
	return row.Points, nil
}

// AddPoints applies the delta server-side so concurrent deposits never lose
// an update, creating the balance row when the member has none yet.
func (r *repository) AddPoints(ctx context.Context, userID uuid.UUID, delta int) error {
	result := r.db.WithContext(ctx).
		Model(&models.UserPoints{}).
		Where("user_id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.db.WithContext(ctx).Create(&models.UserPoints{UserID: userID, Points: delta}).Error
	}
	return nil
}

// SetPoints overwrites the balance, inserting the row when missing.
func (r *repository) SetPoints(ctx context.Context, userID uuid.UUID, points int) error {
	result := r.db.WithContext(ctx).
		Model(&models.UserPoints{}).
		Where("user_id = ?", userID).
		UpdateColumn("points", points)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.db.WithContext(ctx).Create(&models.UserPoints{UserID: userID, Points: points}).Error
	}
	return nil
}

// DeductIfEnough subtracts amount only when the balance covers it. The
// condition rides in the WHERE clause, so two concurrent deductions can
// never overdraw the row.
func (r *repository) DeductIfEnough(ctx context.Context, userID uuid.UUID, amount int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UserPoints{}).
		Where("user_id = ? AND points >= ?", userID, amount).
		UpdateColumn("points", gorm.Expr("points - ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) CreateHistory(ctx context.Context, entry *models.PointHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.PointHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var entries []models.PointHistory
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) CountHistory(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PointHistory{}).Count(&count).Error
	return count, err
}

func (r *repository) TotalPoints(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.UserPoints{}).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	return total, err
}

func (r *repository) TotalStats(ctx context.Context) (TotalStats, error) {
	var stats TotalStats
	err := r.db.WithContext(ctx).
		Model(&models.UserPoints{}).
		Select("COUNT(*) AS members, COALESCE(SUM(points), 0) AS total, COALESCE(MIN(points), 0) AS min, COALESCE(MAX(points), 0) AS max, COALESCE(AVG(points), 0) AS average").
		Scan(&stats).Error
	return stats, err
}

func (r *repository) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var entries []LeaderboardEntry
	err := r.db.WithContext(ctx).
		Table("user_points").
		Select("users.phone, users.name, user_points.points").
		Joins("JOIN users ON users.id = user_points.user_id").
		Order("user_points.points DESC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ResetAllBalances(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UserPoints{}).
		Where("points <> 0").
		UpdateColumn("points", 0)
	return result.RowsAffected, result.Error
}
