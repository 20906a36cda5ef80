package dashboard

import (
	"context"
	"fmt"

	"github.com/rattapoomjame/Sort/internal/activity"
	"github.com/rattapoomjame/Sort/internal/points"
	"github.com/rattapoomjame/Sort/internal/users"
	"github.com/rattapoomjame/Sort/internal/withdrawals"
	"github.com/rattapoomjame/Sort/pkg/enums"
	apperrors "github.com/rattapoomjame/Sort/pkg/errors"
)

// Stats is the admin dashboard header card.
type Stats struct {
	UserCount          int64 `json:"user_count"`
	TotalPoints        int64 `json:"total_points"`
	PendingWithdrawals int64 `json:"pending_withdrawals"`
	BottleCount        int64 `json:"bottle_count"`
}

// DangerResult reports the rows touched by a danger-zone operation.
type DangerResult struct {
	PointBalancesReset int64 `json:"point_balances_reset"`
	WithdrawalsCleared int64 `json:"withdrawals_cleared"`
}

// Service aggregates cross-vertical reads for the admin dashboard and hosts
// the danger-zone operations behind it.
type Service interface {
	Stats(ctx context.Context) (Stats, error)
	ResetAllPoints(ctx context.Context) (DangerResult, error)
	ClearCompletedWithdrawals(ctx context.Context) (DangerResult, error)
}

type service struct {
	usersRepo       users.Repository
	pointsRepo      points.Repository
	withdrawalsRepo withdrawals.Repository
	pointsSvc       points.Service
	withdrawalsSvc  withdrawals.Service
	activity        activity.Service
}

// ServiceParams wire the dashboard service.
type ServiceParams struct {
	UsersRepo       users.Repository
	PointsRepo      points.Repository
	WithdrawalsRepo withdrawals.Repository
	PointsService   points.Service
	Withdrawals     withdrawals.Service
	Activity        activity.Service
}

// NewService builds the dashboard service.
func NewService(params ServiceParams) (Service, error) {
	if params.UsersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.PointsRepo == nil {
		return nil, fmt.Errorf("points repository required")
	}
	if params.WithdrawalsRepo == nil {
		return nil, fmt.Errorf("withdrawals repository required")
	}
	if params.PointsService == nil {
		return nil, fmt.Errorf("points service required")
	}
	if params.Withdrawals == nil {
		return nil, fmt.Errorf("withdrawals service required")
	}
	if params.Activity == nil {
		return nil, fmt.Errorf("activity service required")
	}
	return &service{
		usersRepo:       params.UsersRepo,
		pointsRepo:      params.PointsRepo,
		withdrawalsRepo: params.WithdrawalsRepo,
		pointsSvc:       params.PointsService,
		withdrawalsSvc:  params.Withdrawals,
		activity:        params.Activity,
	}, nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	userCount, err := s.usersRepo.Count(ctx)
	if err != nil {
		return stats, apperrors.Wrap(apperrors.CodeInternal, err, "counting users")
	}
	totalPoints, err := s.pointsRepo.TotalPoints(ctx)
	if err != nil {
		return stats, apperrors.Wrap(apperrors.CodeInternal, err, "summing points")
	}
	pending, err := s.withdrawalsRepo.CountByStatus(ctx, enums.WithdrawalStatusPending)
	if err != nil {
		return stats, apperrors.Wrap(apperrors.CodeInternal, err, "counting pending withdrawals")
	}
	bottles, err := s.pointsRepo.CountHistory(ctx)
	if err != nil {
		return stats, apperrors.Wrap(apperrors.CodeInternal, err, "counting deposits")
	}

	stats.UserCount = userCount
	stats.TotalPoints = totalPoints
	stats.PendingWithdrawals = pending
	stats.BottleCount = bottles
	return stats, nil
}

// ResetAllPoints zeroes every member balance. History rows are kept so the
// dashboard deposit count survives a reset.
func (s *service) ResetAllPoints(ctx context.Context) (DangerResult, error) {
	rows, err := s.pointsSvc.ResetAll(ctx)
	if err != nil {
		return DangerResult{}, err
	}
	return DangerResult{PointBalancesReset: rows}, nil
}

func (s *service) ClearCompletedWithdrawals(ctx context.Context) (DangerResult, error) {
	rows, err := s.withdrawalsSvc.ClearCompleted(ctx)
	if err != nil {
		return DangerResult{}, err
	}
	return DangerResult{WithdrawalsCleared: rows}, nil
}
