package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rattapoomjame/Sort/internal/activity"
	"github.com/rattapoomjame/Sort/pkg/db"
	"github.com/rattapoomjame/Sort/pkg/db/models"
	"github.com/rattapoomjame/Sort/pkg/enums"
	apperrors "github.com/rattapoomjame/Sort/pkg/errors"
	"gorm.io/gorm"
)

// Service defines identity operations for kiosk members.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, phone string) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	List(ctx context.Context, params ListParams) ([]models.User, int64, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RegisterInput captures a new member signup from the kiosk screen.
type RegisterInput struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	tx       txRunner
	activity activity.Service
}

// NewService wires a users service with its repository and transaction runner.
func NewService(repo Repository, tx txRunner, activitySvc activity.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if activitySvc == nil {
		return nil, fmt.Errorf("activity service required")
	}
	return &service{repo: repo, tx: tx, activity: activitySvc}, nil
}

// Register creates the user and its zero balance row in one transaction so a
// member can never exist without a user_points row.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	phone := strings.TrimSpace(input.Phone)
	name := strings.TrimSpace(input.Name)

	if !ValidPhone(phone) {
		return nil, apperrors.New(apperrors.CodeValidation, "phone must be a Thai mobile number").
			WithDetails(map[string]string{"phone": "expected format 0XXXXXXXXX starting 06/08/09"})
	}
	if name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "name is required")
	}

	user := &models.User{
		ID:    uuid.New(),
		Phone: phone,
		Name:  name,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Create(ctx, user); err != nil {
			return err
		}
		return txRepo.CreatePoints(ctx, &models.UserPoints{UserID: user.ID, Points: 0})
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "phone already registered")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "registering user")
	}

	s.activity.Record(ctx, activity.RecordInput{
		Type:       enums.ActivityUserRegistered,
		ActorPhone: phone,
		Message:    fmt.Sprintf("%s registered", name),
	})

	return user, nil
}

func (s *service) Login(ctx context.Context, phone string) (*models.User, error) {
	phone = strings.TrimSpace(phone)
	if !ValidPhone(phone) {
		return nil, apperrors.New(apperrors.CodeValidation, "phone must be a Thai mobile number")
	}

	user, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "phone not registered")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "looking up user")
	}

	s.activity.Record(ctx, activity.RecordInput{
		Type:       enums.ActivityUserLoggedIn,
		ActorPhone: phone,
		Message:    fmt.Sprintf("%s logged in", user.Name),
	})

	return user, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading user")
	}
	return user, nil
}

func (s *service) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	phone = strings.TrimSpace(phone)
	if !ValidPhone(phone) {
		return nil, apperrors.New(apperrors.CodeValidation, "phone must be a Thai mobile number")
	}
	user, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "phone not registered")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "looking up user")
	}
	return user, nil
}

func (s *service) List(ctx context.Context, params ListParams) ([]models.User, int64, error) {
	list, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.CodeInternal, err, "listing users")
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.CodeInternal, err, "counting users")
	}
	return list, total, nil
}

func (s *service) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "name is required")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = name
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating user")
	}
	return user, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "deleting user")
	}
	return nil
}
