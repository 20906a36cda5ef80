package withdrawals

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rattapoomjame/Sort/internal/activity"
	"github.com/rattapoomjame/Sort/internal/points"
	"github.com/rattapoomjame/Sort/internal/settings"
	"github.com/rattapoomjame/Sort/internal/users"
	"github.com/rattapoomjame/Sort/pkg/db/models"
	"github.com/rattapoomjame/Sort/pkg/enums"
	apperrors "github.com/rattapoomjame/Sort/pkg/errors"
	"gorm.io/gorm"
)

// promptPayRe accepts the two PromptPay proxy formats: a mobile number or a
// 13-digit citizen id.
var promptPayRe = regexp.MustCompile(`^(0[0-9]{9}|[0-9]{13})$`)

// Service runs the points-to-cash workflow.
type Service interface {
	Request(ctx context.Context, input RequestInput) (*models.Withdrawal, error)
	Review(ctx context.Context, input ReviewInput) (*models.Withdrawal, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error)
	List(ctx context.Context, params ListParams) ([]models.Withdrawal, error)
	Summary(ctx context.Context) (Summary, error)
	ClearCompleted(ctx context.Context) (int64, error)
}

// RequestInput is a member cash-out request from the kiosk payment screen.
type RequestInput struct {
	Phone           string `json:"phone"`
	PointsUsed      int    `json:"points_used"`
	PromptPayNumber string `json:"promptpay_number"`
}

// ReviewInput is the admin decision on a pending withdrawal.
type ReviewInput struct {
	ID     uuid.UUID              `json:"id"`
	Status enums.WithdrawalStatus `json:"status"`
	Note   string                 `json:"note"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo       Repository
	pointsRepo points.Repository
	users      users.Service
	settings   settings.Service
	tx         txRunner
	activity   activity.Service
	now        func() time.Time
}

// ServiceParams wire the withdrawals service.
type ServiceParams struct {
	Repository Repository
	PointsRepo points.Repository
	Users      users.Service
	Settings   settings.Service
	Tx         txRunner
	Activity   activity.Service
}

// NewService builds the withdrawals service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("withdrawals repository required")
	}
	if params.PointsRepo == nil {
		return nil, fmt.Errorf("points repository required")
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
	return &service{
		repo:       params.Repository,
		pointsRepo: params.PointsRepo,
		users:      params.Users,
		settings:   params.Settings,
		tx:         params.Tx,
		activity:   params.Activity,
		now:        time.Now,
	}, nil
}

// Request deducts points_used and inserts the pending row in one transaction.
// The deduction happens at creation, not at approval, so the visible balance
// always reflects pending requests.
func (s *service) Request(ctx context.Context, input RequestInput) (*models.Withdrawal, error) {
	user, err := s.users.GetByPhone(ctx, input.Phone)
	if err != nil {
		return nil, err
	}

	promptPay := strings.TrimSpace(input.PromptPayNumber)
	if !promptPayRe.MatchString(promptPay) {
		return nil, apperrors.New(apperrors.CodeValidation, "promptpay number must be a phone number or citizen id")
	}

	setting, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if input.PointsUsed < setting.MinWithdrawalPoints {
		return nil, apperrors.New(apperrors.CodeValidation,
			fmt.Sprintf("minimum withdrawal is %d points", setting.MinWithdrawalPoints))
	}

	amount := points.PointsToBaht(input.PointsUsed, setting.PointsPerBaht)
	if amount <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "points do not convert to a positive amount")
	}

	withdrawal := &models.Withdrawal{
		ID:              uuid.New(),
		UserID:          user.ID,
		PointsUsed:      input.PointsUsed,
		AmountBaht:      amount,
		PromptPayNumber: promptPay,
		Status:          enums.WithdrawalStatusPending,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.pointsRepo.WithTx(tx).DeductIfEnough(ctx, user.ID, input.PointsUsed)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.New(apperrors.CodeStateConflict, "insufficient points")
		}
		return s.repo.WithTx(tx).Create(ctx, withdrawal)
	})
	if err != nil {
		if apperrors.As(err) != nil {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "creating withdrawal")
	}

	s.activity.Record(ctx, activity.RecordInput{
		Type:       enums.ActivityWithdrawalRequested,
		ActorPhone: user.Phone,
		Message:    fmt.Sprintf("withdrawal of %d baht requested", amount),
		Metadata: map[string]any{
			"withdrawal_id": withdrawal.ID,
			"points_used":   input.PointsUsed,
			"amount_baht":   amount,
		},
	})

	return withdrawal, nil
}

// Review finalizes a pending withdrawal. Terminal rows cannot be reviewed
// again, and a rejection does not restore points automatically: the operator
// settles disputed balances through the points adjustment screen.
func (s *service) Review(ctx context.Context, input ReviewInput) (*models.Withdrawal, error) {
	if input.Status != enums.WithdrawalStatusCompleted && input.Status != enums.WithdrawalStatusRejected {
		return nil, apperrors.New(apperrors.CodeValidation, "status must be completed or rejected")
	}

	withdrawal, err := s.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if withdrawal.Status.IsTerminal() {
		return nil, apperrors.New(apperrors.CodeStateConflict, "withdrawal already reviewed")
	}

	now := s.now().UTC()
	withdrawal.Status = input.Status
	withdrawal.ReviewedAt = &now
	if note := strings.TrimSpace(input.Note); note != "" {
		withdrawal.Note = &note
	}

	if err := s.repo.Update(ctx, withdrawal); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating withdrawal")
	}

	s.activity.Record(ctx, activity.RecordInput{
		Type:    enums.ActivityWithdrawalReviewed,
		Message: fmt.Sprintf("withdrawal %s %s", withdrawal.ID, input.Status),
		Metadata: map[string]any{
			"withdrawal_id": withdrawal.ID,
			"status":        input.Status,
			"note":          input.Note,
		},
	})

	return withdrawal, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "withdrawal id is required")
	}
	withdrawal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "withdrawal not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading withdrawal")
	}
	return withdrawal, nil
}

func (s *service) List(ctx context.Context, params ListParams) ([]models.Withdrawal, error) {
	if params.Status != "" && !params.Status.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid status filter")
	}
	list, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing withdrawals")
	}
	return list, nil
}

func (s *service) Summary(ctx context.Context) (Summary, error) {
	summary, err := s.repo.Summary(ctx, s.now().UTC())
	if err != nil {
		return Summary{}, apperrors.Wrap(apperrors.CodeInternal, err, "building summary")
	}
	return summary, nil
}

func (s *service) ClearCompleted(ctx context.Context) (int64, error) {
	rows, err := s.repo.DeleteCompleted(ctx)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInternal, err, "clearing completed withdrawals")
	}
	s.activity.Record(ctx, activity.RecordInput{
		Type:     enums.ActivityDangerReset,
		Message:  "completed withdrawals cleared",
		Metadata: map[string]any{"rows": rows},
	})
	return rows, nil
}
