package points

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rattapoomjame/Sort/internal/activity"
	"github.com/rattapoomjame/Sort/internal/machine"
	"github.com/rattapoomjame/Sort/internal/settings"
	"github.com/rattapoomjame/Sort/internal/users"
	"github.com/rattapoomjame/Sort/pkg/db/models"
	"github.com/rattapoomjame/Sort/pkg/enums"
	apperrors "github.com/rattapoomjame/Sort/pkg/errors"
	"gorm.io/gorm"
)

// Service awards and serves points.
type Service interface {
	AwardDeposit(ctx context.Context, input AwardInput) (*AwardResult, error)
	Balance(ctx context.Context, ref MemberRef) (*BalanceResult, error)
	History(ctx context.Context, ref MemberRef, limit, offset int) ([]models.PointHistory, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	Stats(ctx context.Context) (TotalStats, error)
	Adjust(ctx context.Context, input AdjustInput) (*BalanceResult, error)
	Set(ctx context.Context, userID uuid.UUID, points int) (*BalanceResult, error)
	ResetAll(ctx context.Context) (int64, error)
}

// MemberRef identifies a member either by id (the device protocol) or by
// phone (the kiosk keypad flow).
type MemberRef struct {
	UserID uuid.UUID
	Phone  string
}

// AwardInput is what the sorting machine posts after accepting an item. The
// device sends user_id and a detector label; Points overrides the pricing
// lookup when the firmware already resolved the rate.
type AwardInput struct {
	UserID    uuid.UUID `json:"user_id"`
	Phone     string    `json:"phone"`
	ItemLabel string    `json:"label"`
	Points    int       `json:"points"`
	MachineID string    `json:"machine_id"`
}

// AwardResult reports what one deposit earned.
type AwardResult struct {
	UserID   uuid.UUID      `json:"user_id"`
	ItemType enums.ItemType `json:"item_type"`
	Points   int            `json:"points"`
	Balance  int            `json:"balance"`
}

// BalanceResult pairs a member with their current balance.
type BalanceResult struct {
	UserID uuid.UUID `json:"user_id"`
	Phone  string    `json:"phone"`
	Name   string    `json:"name"`
	Points int       `json:"points"`
}

// AdjustInput is an admin balance correction. Delta may be negative; a
// deduction below zero is refused.
type AdjustInput struct {
	UserID uuid.UUID `json:"user_id"`
	Delta  int       `json:"delta"`
	Reason string    `json:"reason"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo        Repository
	machineRepo machine.Repository
	users       users.Service
	settings    settings.Service
	tx          txRunner
	activity    activity.Service
	machineID   string
}

// ServiceParams wire the points service.
type ServiceParams struct {
	Repository       Repository
	MachineRepo      machine.Repository
	Users            users.Service
	Settings         settings.Service
	Tx               txRunner
	Activity         activity.Service
	DefaultMachineID string
}

// NewService builds the points service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("points repository required")
	}
	if params.MachineRepo == nil {
		return nil, fmt.Errorf("machine repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users service required")
	}
	if params.Settings == nil {
		return nil, fmt.Errorf("settings service required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Activity == nil {
		return nil, fmt.Errorf("activity service required")
	}
	machineID := params.DefaultMachineID
	if machineID == "" {
		machineID = "main"
	}
	return &service{
		repo:        params.Repository,
		machineRepo: params.MachineRepo,
		users:       params.Users,
		settings:    params.Settings,
		tx:          params.Tx,
		activity:    params.Activity,
		machineID:   machineID,
	}, nil
}

func (s *service) member(ctx context.Context, ref MemberRef) (*models.User, error) {
	if ref.UserID != uuid.Nil {
		return s.users.Get(ctx, ref.UserID)
	}
	if ref.Phone != "" {
		return s.users.GetByPhone(ctx, ref.Phone)
	}
	return nil, apperrors.New(apperrors.CodeValidation, "user_id or phone is required")
}

// AwardDeposit resolves the member and rate, then writes the history row,
// bumps the balance, and bumps the machine counter in one transaction.
func (s *service) AwardDeposit(ctx context.Context, input AwardInput) (*AwardResult, error) {
	user, err := s.member(ctx, MemberRef{UserID: input.UserID, Phone: input.Phone})
	if err != nil {
		return nil, err
	}

	itemType, err := enums.ClassifyItemLabel(input.ItemLabel)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "unrecognized item")
	}

	rate := input.Points
	if rate < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "points must be positive")
	}
	if rate == 0 {
		setting, err := s.settings.Get(ctx)
		if err != nil {
			return nil, err
		}
		configured, ok := setting.Pricing.PointsFor(string(itemType))
		if !ok || configured <= 0 {
			return nil, apperrors.New(apperrors.CodeDependency, "no rate configured for item type")
		}
		rate = configured
	}

	machineID := strings.TrimSpace(input.MachineID)
	if machineID == "" {
		machineID = s.machineID
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.CreateHistory(ctx, &models.PointHistory{
			UserID:    user.ID,
			ItemType:  itemType,
			Points:    rate,
			MachineID: machineID,
		}); err != nil {
			return err
		}
		if err := txRepo.AddPoints(ctx, user.ID, rate); err != nil {
			return err
		}
		return s.machineRepo.WithTx(tx).IncrementCount(ctx, machineID, itemType)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "awarding deposit")
	}

	balance, err := s.repo.GetBalance(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "reading balance")
	}

	s.activity.Record(ctx, activity.RecordInput{
		Type:       enums.ActivityPointsAwarded,
		ActorPhone: user.Phone,
		Message:    fmt.Sprintf("%d points for a %s item", rate, itemType),
		Metadata: map[string]any{
			"item_type":  itemType,
			"points":     rate,
			"machine_id": machineID,
		},
	})

	return &AwardResult{
		UserID:   user.ID,
		ItemType: itemType,
		Points:   rate,
		Balance:  balance,
	}, nil
}

func (s *service) Balance(ctx context.Context, ref MemberRef) (*BalanceResult, error) {
	user, err := s.member(ctx, ref)
	if err != nil {
		return nil, err
	}
	points, err := s.repo.GetBalance(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "balance row missing")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "reading balance")
	}
	return &BalanceResult{
		UserID: user.ID,
		Phone:  user.Phone,
		Name:   user.Name,
		Points: points,
	}, nil
}

func (s *service) History(ctx context.Context, ref MemberRef, limit, offset int) ([]models.PointHistory, error) {
	user, err := s.member(ctx, ref)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListHistory(ctx, user.ID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing history")
	}
	return entries, nil
}

func (s *service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	entries, err := s.repo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "building leaderboard")
	}
	for i := range entries {
		entries[i].Phone = maskPhone(entries[i].Phone)
	}
	return entries, nil
}

func (s *service) Stats(ctx context.Context) (TotalStats, error) {
	stats, err := s.repo.TotalStats(ctx)
	if err != nil {
		return TotalStats{}, apperrors.Wrap(apperrors.CodeInternal, err, "aggregating balances")
	}
	return stats, nil
}

func (s *service) Adjust(ctx context.Context, input AdjustInput) (*BalanceResult, error) {
	if input.UserID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	if input.Delta == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "delta cannot be zero")
	}

	user, err := s.users.Get(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Delta > 0 {
		if err := s.repo.AddPoints(ctx, user.ID, input.Delta); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "adjusting points")
		}
	} else {
		ok, err := s.repo.DeductIfEnough(ctx, user.ID, -input.Delta)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "adjusting points")
		}
		if !ok {
			return nil, apperrors.New(apperrors.CodeStateConflict, "balance cannot go negative")
		}
	}

	points, err := s.repo.GetBalance(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "reading balance")
	}

	s.activity.Record(ctx, activity.RecordInput{
		Type:       enums.ActivityPointsAdjusted,
		ActorPhone: user.Phone,
		Message:    fmt.Sprintf("balance adjusted by %d", input.Delta),
		Metadata:   map[string]any{"delta": input.Delta, "reason": input.Reason},
	})

	return &BalanceResult{UserID: user.ID, Phone: user.Phone, Name: user.Name, Points: points}, nil
}

// Set overwrites the balance with an absolute value, creating the row when
// the member has never earned points.
func (s *service) Set(ctx context.Context, userID uuid.UUID, points int) (*BalanceResult, error) {
	if userID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	if points < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "points cannot be negative")
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetPoints(ctx, user.ID, points); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "setting points")
	}

	s.activity.Record(ctx, activity.RecordInput{
		Type:       enums.ActivityPointsAdjusted,
		ActorPhone: user.Phone,
		Message:    fmt.Sprintf("balance set to %d", points),
		Metadata:   map[string]any{"points": points},
	})

	return &BalanceResult{UserID: user.ID, Phone: user.Phone, Name: user.Name, Points: points}, nil
}

func (s *service) ResetAll(ctx context.Context) (int64, error) {
	rows, err := s.repo.ResetAllBalances(ctx)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInternal, err, "resetting balances")
	}
	s.activity.Record(ctx, activity.RecordInput{
		Type:     enums.ActivityDangerReset,
		Message:  "all balances reset to zero",
		Metadata: map[string]any{"rows": rows},
	})
	return rows, nil
}

// maskPhone hides the middle digits on public surfaces: 0812345678 -> 081xxx5678.
func maskPhone(phone string) string {
	if len(phone) != 10 {
		return phone
	}
	return phone[:3] + "xxx" + phone[6:]
}
