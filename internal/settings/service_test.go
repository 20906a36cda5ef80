package settings

import (
	"context"
	"testing"
	"time"

	"github.com/rattapoomjame/Sort/internal/activity"
	"github.com/rattapoomjame/Sort/pkg/db/models"
	dbtypes "github.com/rattapoomjame/Sort/pkg/db/types"
	apperrors "github.com/rattapoomjame/Sort/pkg/errors"
	"github.com/rattapoomjame/Sort/pkg/logger"
	"gorm.io/gorm"
)

type fakeRepository struct {
	setting *models.MachineSetting
	getErr  error
	saveErr error
	saved   *models.MachineSetting
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Get(ctx context.Context) (*models.MachineSetting, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.setting, nil
}

func (f *fakeRepository) Save(ctx context.Context, setting *models.MachineSetting) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = setting
	return nil
}

type activityRepoStub struct{}

func (activityRepoStub) WithTx(tx *gorm.DB) activity.Repository { return activityRepoStub{} }
func (activityRepoStub) Create(ctx context.Context, entry *models.ActivityLog) error {
	return nil
}
func (activityRepoStub) List(ctx context.Context, params activity.ListParams) ([]models.ActivityLog, error) {
	return nil, nil
}
func (activityRepoStub) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func mustService(t *testing.T, repo Repository) Service {
	t.Helper()
	activitySvc, err := activity.NewService(activityRepoStub{}, logger.New(logger.Options{ServiceName: "settings-test"}))
	if err != nil {
		t.Fatalf("activity service: %v", err)
	}
	svc, err := NewService(repo, activitySvc)
	if err != nil {
		t.Fatalf("settings service: %v", err)
	}
	return svc
}

func defaultSetting() *models.MachineSetting {
	return &models.MachineSetting{
		ID:                  models.SettingsRowID,
		Pricing:             dbtypes.DefaultPricing(),
		PointsPerBaht:       100,
		MinWithdrawalPoints: 100,
	}
}

func TestService_UpdateReplacesRates(t *testing.T) {
	repo := &fakeRepository{setting: defaultSetting()}
	svc := mustService(t, repo)

	updated, err := svc.Update(context.Background(), UpdateInput{
		Pricing:             dbtypes.Pricing{Glass: 6, Plastic: 4, Can: 5},
		PointsPerBaht:       50,
		MinWithdrawalPoints: 200,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if repo.saved == nil {
		t.Fatal("expected settings to be saved")
	}
	if updated.Pricing.Glass != 6 || updated.PointsPerBaht != 50 || updated.MinWithdrawalPoints != 200 {
		t.Fatalf("unexpected saved settings %+v", updated)
	}
	if updated.ID != models.SettingsRowID {
		t.Fatalf("singleton id must stay pinned, got %d", updated.ID)
	}
}

func TestService_UpdateRejectsNonPositiveRates(t *testing.T) {
	svc := mustService(t, &fakeRepository{setting: defaultSetting()})

	inputs := []UpdateInput{
		{Pricing: dbtypes.Pricing{Glass: 0, Plastic: 3, Can: 4}, PointsPerBaht: 100, MinWithdrawalPoints: 100},
		{Pricing: dbtypes.DefaultPricing(), PointsPerBaht: 0, MinWithdrawalPoints: 100},
		{Pricing: dbtypes.DefaultPricing(), PointsPerBaht: 100, MinWithdrawalPoints: -1},
	}
	for i, input := range inputs {
		if _, err := svc.Update(context.Background(), input); !apperrors.IsCode(err, apperrors.CodeValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestService_GetMissingRowIsDependencyError(t *testing.T) {
	svc := mustService(t, &fakeRepository{getErr: gorm.ErrRecordNotFound})

	if _, err := svc.Get(context.Background()); !apperrors.IsCode(err, apperrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
