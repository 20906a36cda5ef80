package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rattapoomjame/Sort/pkg/db/models"
	"github.com/rattapoomjame/Sort/pkg/enums"
	"github.com/rattapoomjame/Sort/pkg/logger"
)

// Service records and serves the admin activity feed. Record is best effort:
// callers treat a failed write as a logged warning, never as a request failure.
type Service interface {
	Record(ctx context.Context, input RecordInput)
	List(ctx context.Context, params ListParams) ([]models.ActivityLog, error)
}

// RecordInput captures one activity feed entry.
type RecordInput struct {
	Type       enums.ActivityType
	ActorPhone string
	Message    string
	Metadata   any
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires an activity service with the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) {
	if input.Type == "" || input.Message == "" {
		return
	}

	entry := &models.ActivityLog{
		Type:    input.Type,
		Message: input.Message,
	}
	if input.ActorPhone != "" {
		phone := input.ActorPhone
		entry.ActorPhone = &phone
	}
	if input.Metadata != nil {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			s.logg.Warn(ctx, fmt.Sprintf("activity metadata not serializable: %v", err))
		} else {
			entry.Metadata = raw
		}
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("activity write failed: %v", err))
	}
}

func (s *service) List(ctx context.Context, params ListParams) ([]models.ActivityLog, error) {
	return s.repo.List(ctx, params)
}
