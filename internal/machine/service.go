package machine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rattapoomjame/Sort/internal/activity"
	"github.com/rattapoomjame/Sort/pkg/db/models"
	"github.com/rattapoomjame/Sort/pkg/enums"
	apperrors "github.com/rattapoomjame/Sort/pkg/errors"
	"gorm.io/gorm"
)

// Service exposes machine telemetry and maintenance operations.
type Service interface {
	Heartbeat(ctx context.Context, input HeartbeatInput) (*models.MachineStatus, error)
	Status(ctx context.Context, machineID string) (*models.MachineStatus, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.MachineStatus, error)
	BottleCounts(ctx context.Context, machineID string) (BottleCounts, error)
	OverrideCounts(ctx context.Context, input OverrideCountsInput) (*models.MachineStatus, error)
	ToggleMaintenance(ctx context.Context, input ToggleMaintenanceInput) (*models.MachineStatus, error)
	MaintenanceLogs(ctx context.Context, machineID string, limit int) ([]models.MaintenanceLog, error)
	MarkStaleOffline(ctx context.Context, threshold time.Duration) (int64, error)
}

// HeartbeatInput is the periodic ping the kiosk device sends. CPUTemp and
// StorageUsed are optional telemetry readings.
type HeartbeatInput struct {
	MachineID   string   `json:"machine_id"`
	Firmware    *string  `json:"firmware,omitempty"`
	CPUTemp     *float64 `json:"cpu_temp,omitempty"`
	StorageUsed *float64 `json:"storage_used,omitempty"`
}

// UpdateStatusInput is the admin-side machine edit. Nil fields are left
// untouched.
type UpdateStatusInput struct {
	MachineID  string              `json:"machine_id"`
	State      *enums.MachineState `json:"state,omitempty"`
	MaxBottles *int                `json:"max_bottles,omitempty"`
	Firmware   *string             `json:"firmware,omitempty"`
}

// OverrideCountsInput lets the admin reconcile counters after servicing the bins.
type OverrideCountsInput struct {
	MachineID string `json:"machine_id"`
	Glass     int    `json:"glass"`
	Plastic   int    `json:"plastic"`
	Can       int    `json:"can"`
}

// ToggleMaintenanceInput opens or closes a maintenance window.
type ToggleMaintenanceInput struct {
	MachineID string `json:"machine_id"`
	Enabled   bool   `json:"enabled"`
	Note      string `json:"note"`
}

// BottleCounts is the per-material counter snapshot shown on the kiosk screen.
type BottleCounts struct {
	Glass   int `json:"glass"`
	Plastic int `json:"plastic"`
	Can     int `json:"can"`
	Total   int `json:"total"`
}

type service struct {
	repo     Repository
	activity activity.Service
	now      func() time.Time
}

// NewService wires a machine service with the provided repository.
func NewService(repo Repository, activitySvc activity.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("machine repository required")
	}
	if activitySvc == nil {
		return nil, fmt.Errorf("activity service required")
	}
	return &service{repo: repo, activity: activitySvc, now: time.Now}, nil
}

func (s *service) Heartbeat(ctx context.Context, input HeartbeatInput) (*models.MachineStatus, error) {
	machineID := strings.TrimSpace(input.MachineID)
	if machineID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "machine_id is required")
	}

	ping := HeartbeatPing{
		Firmware:    input.Firmware,
		CPUTemp:     input.CPUTemp,
		StorageUsed: input.StorageUsed,
		SeenAt:      s.now().UTC(),
	}
	if ping.StorageUsed != nil && (*ping.StorageUsed < 0 || *ping.StorageUsed > 1) {
		return nil, apperrors.New(apperrors.CodeValidation, "storage_used must be within [0,1]")
	}
	if _, err := s.repo.Heartbeat(ctx, machineID, ping); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "recording heartbeat")
	}

	return s.Status(ctx, machineID)
}

func (s *service) Status(ctx context.Context, machineID string) (*models.MachineStatus, error) {
	machineID = strings.TrimSpace(machineID)
	if machineID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "machine_id is required")
	}
	status, err := s.repo.Get(ctx, machineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "machine not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading machine status")
	}
	return status, nil
}

// UpdateStatus applies an admin edit to the machine row. Maintenance is
// managed through ToggleMaintenance so its log stays consistent.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.MachineStatus, error) {
	status, err := s.Status(ctx, input.MachineID)
	if err != nil {
		return nil, err
	}
	if input.State != nil {
		if !input.State.IsValid() {
			return nil, apperrors.New(apperrors.CodeValidation, "invalid machine state")
		}
		if *input.State == enums.MachineStateMaintenance || status.State == enums.MachineStateMaintenance {
			return nil, apperrors.New(apperrors.CodeStateConflict, "use the maintenance endpoint to change maintenance state")
		}
		status.State = *input.State
	}
	if input.MaxBottles != nil {
		if *input.MaxBottles <= 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "max_bottles must be positive")
		}
		status.MaxBottles = *input.MaxBottles
	}
	if input.Firmware != nil {
		status.Firmware = input.Firmware
	}
	if err := s.repo.Save(ctx, status); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating machine status")
	}
	return s.Status(ctx, input.MachineID)
}

func (s *service) BottleCounts(ctx context.Context, machineID string) (BottleCounts, error) {
	status, err := s.Status(ctx, machineID)
	if err != nil {
		return BottleCounts{}, err
	}
	return BottleCounts{
		Glass:   status.GlassCount,
		Plastic: status.PlasticCount,
		Can:     status.CanCount,
		Total:   status.TotalBottles(),
	}, nil
}

func (s *service) OverrideCounts(ctx context.Context, input OverrideCountsInput) (*models.MachineStatus, error) {
	if input.Glass < 0 || input.Plastic < 0 || input.Can < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "counts cannot be negative")
	}
	if _, err := s.Status(ctx, input.MachineID); err != nil {
		return nil, err
	}
	if err := s.repo.SetCounts(ctx, input.MachineID, input.Glass, input.Plastic, input.Can); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "overriding counts")
	}

	s.activity.Record(ctx, activity.RecordInput{
		Type:    enums.ActivityBottleReset,
		Message: fmt.Sprintf("bottle counters set for %s", input.MachineID),
		Metadata: map[string]any{
			"machine_id": input.MachineID,
			"glass":      input.Glass,
			"plastic":    input.Plastic,
			"can":        input.Can,
		},
	})

	return s.Status(ctx, input.MachineID)
}

func (s *service) ToggleMaintenance(ctx context.Context, input ToggleMaintenanceInput) (*models.MachineStatus, error) {
	status, err := s.Status(ctx, input.MachineID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if input.Enabled {
		if status.State == enums.MachineStateMaintenance {
			return nil, apperrors.New(apperrors.CodeStateConflict, "machine already in maintenance")
		}
		note := strings.TrimSpace(input.Note)
		if note == "" {
			note = "scheduled maintenance"
		}
		if err := s.repo.CreateMaintenance(ctx, &models.MaintenanceLog{
			MachineID: input.MachineID,
			Note:      note,
			StartedAt: now,
		}); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "opening maintenance log")
		}
		if err := s.repo.SetState(ctx, input.MachineID, enums.MachineStateMaintenance); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "setting maintenance state")
		}
	} else {
		if status.State != enums.MachineStateMaintenance {
			return nil, apperrors.New(apperrors.CodeStateConflict, "machine not in maintenance")
		}
		if _, err := s.repo.CloseOpenMaintenance(ctx, input.MachineID, now); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "closing maintenance log")
		}
		if err := s.repo.SetState(ctx, input.MachineID, enums.MachineStateOffline); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "restoring machine state")
		}
	}

	s.activity.Record(ctx, activity.RecordInput{
		Type:    enums.ActivityMachineMaintenance,
		Message: fmt.Sprintf("maintenance %s for %s", toggleWord(input.Enabled), input.MachineID),
		Metadata: map[string]any{
			"machine_id": input.MachineID,
			"enabled":    input.Enabled,
			"note":       input.Note,
		},
	})

	return s.Status(ctx, input.MachineID)
}

func (s *service) MaintenanceLogs(ctx context.Context, machineID string, limit int) ([]models.MaintenanceLog, error) {
	machineID = strings.TrimSpace(machineID)
	if machineID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "machine_id is required")
	}
	logs, err := s.repo.ListMaintenance(ctx, machineID, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing maintenance logs")
	}
	return logs, nil
}

func (s *service) MarkStaleOffline(ctx context.Context, threshold time.Duration) (int64, error) {
	if threshold <= 0 {
		return 0, apperrors.New(apperrors.CodeValidation, "threshold must be positive")
	}
	cutoff := s.now().UTC().Add(-threshold)
	rows, err := s.repo.MarkStaleOffline(ctx, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInternal, err, "marking machines offline")
	}
	return rows, nil
}

func toggleWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
