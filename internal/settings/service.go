package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/rattapoomjame/Sort/internal/activity"
	"github.com/rattapoomjame/Sort/pkg/db/models"
	dbtypes "github.com/rattapoomjame/Sort/pkg/db/types"
	"github.com/rattapoomjame/Sort/pkg/enums"
	apperrors "github.com/rattapoomjame/Sort/pkg/errors"
	"gorm.io/gorm"
)

// Service is the single authority for pricing and conversion rates. Every
// award and withdrawal reads rates through here, never from its own copy.
type Service interface {
	Get(ctx context.Context) (*models.MachineSetting, error)
	Update(ctx context.Context, input UpdateInput) (*models.MachineSetting, error)
}

// UpdateInput carries the full replacement pricing configuration. Partial
// updates are not supported: the admin screen always posts the whole form.
type UpdateInput struct {
	Pricing             dbtypes.Pricing `json:"pricing"`
	PointsPerBaht       int             `json:"points_per_baht"`
	MinWithdrawalPoints int             `json:"min_withdrawal_points"`
}

type service struct {
	repo     Repository
	activity activity.Service
}

// NewService wires a settings service with the provided repository.
func NewService(repo Repository, activitySvc activity.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if activitySvc == nil {
		return nil, fmt.Errorf("activity service required")
	}
	return &service{repo: repo, activity: activitySvc}, nil
}

func (s *service) Get(ctx context.Context) (*models.MachineSetting, error) {
	setting, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// migrations seed the row; a miss means the schema never ran
			return nil, apperrors.Wrap(apperrors.CodeDependency, err, "settings row missing")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading settings")
	}
	return setting, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.MachineSetting, error) {
	if input.Pricing.Glass <= 0 || input.Pricing.Plastic <= 0 || input.Pricing.Can <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "per-item rates must be positive")
	}
	if input.PointsPerBaht <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "points_per_baht must be positive")
	}
	if input.MinWithdrawalPoints <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "min_withdrawal_points must be positive")
	}

	setting, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	setting.Pricing = input.Pricing
	setting.PointsPerBaht = input.PointsPerBaht
	setting.MinWithdrawalPoints = input.MinWithdrawalPoints

	if err := s.repo.Save(ctx, setting); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "saving settings")
	}

	s.activity.Record(ctx, activity.RecordInput{
		Type:     enums.ActivityPricingUpdated,
		Message:  "pricing configuration updated",
		Metadata: input,
	})

	return setting, nil
}
