package machine

import (
	"context"
	"testing"
	"time"

	"github.com/rattapoomjame/Sort/internal/activity"
	"github.com/rattapoomjame/Sort/pkg/db/models"
	"github.com/rattapoomjame/Sort/pkg/enums"
	apperrors "github.com/rattapoomjame/Sort/pkg/errors"
	"github.com/rattapoomjame/Sort/pkg/logger"
	"gorm.io/gorm"
)

type fakeRepository struct {
	status          *models.MachineStatus
	heartbeatRows   int64
	staleRows       int64
	staleCutoff     time.Time
	createdLogs     []*models.MaintenanceLog
	closedAt        *time.Time
	stateSet        enums.MachineState
	countsOverriden bool
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Get(ctx context.Context, machineID string) (*models.MachineStatus, error) {
	if f.status == nil || f.status.MachineID != machineID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.status
	return &copied, nil
}

func (f *fakeRepository) Save(ctx context.Context, status *models.MachineStatus) error {
	copied := *status
	f.status = &copied
	return nil
}

func (f *fakeRepository) Heartbeat(ctx context.Context, machineID string, ping HeartbeatPing) (int64, error) {
	if f.status != nil && f.status.State != enums.MachineStateMaintenance {
		f.status.State = enums.MachineStateOnline
		seenAt := ping.SeenAt
		f.status.LastSeenAt = &seenAt
		if ping.Firmware != nil {
			f.status.Firmware = ping.Firmware
		}
		if ping.CPUTemp != nil {
			f.status.CPUTemp = ping.CPUTemp
		}
		if ping.StorageUsed != nil {
			f.status.StorageUsed = ping.StorageUsed
		}
		return 1, nil
	}
	return f.heartbeatRows, nil
}

func (f *fakeRepository) IncrementCount(ctx context.Context, machineID string, itemType enums.ItemType) error {
	return nil
}

func (f *fakeRepository) SetCounts(ctx context.Context, machineID string, glass, plastic, can int) error {
	f.countsOverriden = true
	f.status.GlassCount = glass
	f.status.PlasticCount = plastic
	f.status.CanCount = can
	return nil
}

func (f *fakeRepository) SetState(ctx context.Context, machineID string, state enums.MachineState) error {
	f.stateSet = state
	f.status.State = state
	return nil
}

func (f *fakeRepository) MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	f.staleCutoff = cutoff
	return f.staleRows, nil
}

func (f *fakeRepository) CreateMaintenance(ctx context.Context, log *models.MaintenanceLog) error {
	f.createdLogs = append(f.createdLogs, log)
	return nil
}

func (f *fakeRepository) CloseOpenMaintenance(ctx context.Context, machineID string, endedAt time.Time) (int64, error) {
	f.closedAt = &endedAt
	return 1, nil
}

func (f *fakeRepository) ListMaintenance(ctx context.Context, machineID string, limit int) ([]models.MaintenanceLog, error) {
	return nil, nil
}

type activityRepoStub struct {
	entries []*models.ActivityLog
}

func (s *activityRepoStub) WithTx(tx *gorm.DB) activity.Repository { return s }
func (s *activityRepoStub) Create(ctx context.Context, entry *models.ActivityLog) error {
	s.entries = append(s.entries, entry)
	return nil
}
func (s *activityRepoStub) List(ctx context.Context, params activity.ListParams) ([]models.ActivityLog, error) {
	return nil, nil
}
func (s *activityRepoStub) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func mustService(t *testing.T, repo Repository) Service {
	svc, _ := mustServiceRecording(t, repo)
	return svc
}

func mustServiceRecording(t *testing.T, repo Repository) (Service, *activityRepoStub) {
	t.Helper()
	actRepo := &activityRepoStub{}
	activitySvc, err := activity.NewService(actRepo, logger.New(logger.Options{ServiceName: "machine-test"}))
	if err != nil {
		t.Fatalf("activity service: %v", err)
	}
	svc, err := NewService(repo, activitySvc)
	if err != nil {
		t.Fatalf("machine service: %v", err)
	}
	return svc, actRepo
}

func mainMachine(state enums.MachineState) *models.MachineStatus {
	return &models.MachineStatus{MachineID: "main", State: state, GlassCount: 2, PlasticCount: 1, CanCount: 3}
}

func TestService_HeartbeatReturnsStatus(t *testing.T) {
	repo := &fakeRepository{status: mainMachine(enums.MachineStateOffline)}
	svc := mustService(t, repo)

	firmware := "2.0.0"
	status, err := svc.Heartbeat(context.Background(), HeartbeatInput{MachineID: "main", Firmware: &firmware})
	if err != nil {
		t.Fatalf("Heartbeat error: %v", err)
	}
	if status.State != enums.MachineStateOnline {
		t.Fatalf("expected machine online, got %s", status.State)
	}
}

func TestService_HeartbeatUnknownMachine(t *testing.T) {
	svc := mustService(t, &fakeRepository{})

	_, err := svc.Heartbeat(context.Background(), HeartbeatInput{MachineID: "ghost"})
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_BottleCountsSumsTotal(t *testing.T) {
	repo := &fakeRepository{status: mainMachine(enums.MachineStateOnline)}
	svc := mustService(t, repo)

	counts, err := svc.BottleCounts(context.Background(), "main")
	if err != nil {
		t.Fatalf("BottleCounts error: %v", err)
	}
	if counts.Total != 6 || counts.Glass != 2 || counts.Plastic != 1 || counts.Can != 3 {
		t.Fatalf("unexpected counts %+v", counts)
	}
}

func TestService_ToggleMaintenanceOpensWindow(t *testing.T) {
	repo := &fakeRepository{status: mainMachine(enums.MachineStateOnline)}
	svc := mustService(t, repo)

	status, err := svc.ToggleMaintenance(context.Background(), ToggleMaintenanceInput{
		MachineID: "main",
		Enabled:   true,
		Note:      "belt replacement",
	})
	if err != nil {
		t.Fatalf("ToggleMaintenance error: %v", err)
	}
	if status.State != enums.MachineStateMaintenance {
		t.Fatalf("expected maintenance state, got %s", status.State)
	}
	if len(repo.createdLogs) != 1 || repo.createdLogs[0].Note != "belt replacement" {
		t.Fatalf("expected maintenance log, got %+v", repo.createdLogs)
	}
}

func TestService_ToggleMaintenanceTwiceConflicts(t *testing.T) {
	repo := &fakeRepository{status: mainMachine(enums.MachineStateMaintenance)}
	svc := mustService(t, repo)

	_, err := svc.ToggleMaintenance(context.Background(), ToggleMaintenanceInput{MachineID: "main", Enabled: true})
	if !apperrors.IsCode(err, apperrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestService_ToggleMaintenanceOffClosesLog(t *testing.T) {
	repo := &fakeRepository{status: mainMachine(enums.MachineStateMaintenance)}
	svc := mustService(t, repo)

	status, err := svc.ToggleMaintenance(context.Background(), ToggleMaintenanceInput{MachineID: "main", Enabled: false})
	if err != nil {
		t.Fatalf("ToggleMaintenance error: %v", err)
	}
	if repo.closedAt == nil {
		t.Fatal("expected open maintenance log to be closed")
	}
	if status.State != enums.MachineStateOffline {
		t.Fatalf("expected offline after maintenance, got %s", status.State)
	}
}

func TestService_MarkStaleOfflineUsesThreshold(t *testing.T) {
	repo := &fakeRepository{staleRows: 1}
	svc := mustService(t, repo).(*service)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	rows, err := svc.MarkStaleOffline(context.Background(), 5*time.Minute)
	if err != nil {
		t.Fatalf("MarkStaleOffline error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row, got %d", rows)
	}
	want := fixed.Add(-5 * time.Minute)
	if !repo.staleCutoff.Equal(want) {
		t.Fatalf("cutoff = %v, want %v", repo.staleCutoff, want)
	}
}

func TestService_OverrideCountsRecordsReset(t *testing.T) {
	repo := &fakeRepository{status: mainMachine(enums.MachineStateOnline)}
	svc, actRepo := mustServiceRecording(t, repo)

	status, err := svc.OverrideCounts(context.Background(), OverrideCountsInput{MachineID: "main"})
	if err != nil {
		t.Fatalf("OverrideCounts error: %v", err)
	}
	if status.TotalBottles() != 0 {
		t.Fatalf("expected counters zeroed, got %+v", status)
	}
	if len(actRepo.entries) != 1 {
		t.Fatalf("expected one activity entry, got %d", len(actRepo.entries))
	}
	if actRepo.entries[0].Type != enums.ActivityBottleReset {
		t.Fatalf("expected bottle_reset entry, got %s", actRepo.entries[0].Type)
	}
}

func TestService_HeartbeatStoresTelemetry(t *testing.T) {
	repo := &fakeRepository{status: mainMachine(enums.MachineStateOffline)}
	svc := mustService(t, repo)

	cpu := 61.0
	storage := 0.4
	status, err := svc.Heartbeat(context.Background(), HeartbeatInput{
		MachineID:   "main",
		CPUTemp:     &cpu,
		StorageUsed: &storage,
	})
	if err != nil {
		t.Fatalf("Heartbeat error: %v", err)
	}
	if status.CPUTemp == nil || *status.CPUTemp != 61.0 {
		t.Fatalf("expected cpu temp stored, got %+v", status.CPUTemp)
	}
	if status.StorageUsed == nil || *status.StorageUsed != 0.4 {
		t.Fatalf("expected storage reading stored, got %+v", status.StorageUsed)
	}
}

func TestService_HeartbeatRejectsStorageOutOfRange(t *testing.T) {
	repo := &fakeRepository{status: mainMachine(enums.MachineStateOffline)}
	svc := mustService(t, repo)

	storage := 1.5
	_, err := svc.Heartbeat(context.Background(), HeartbeatInput{MachineID: "main", StorageUsed: &storage})
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_UpdateStatusEditsStateAndCapacity(t *testing.T) {
	repo := &fakeRepository{status: mainMachine(enums.MachineStateOnline)}
	svc := mustService(t, repo)

	state := enums.MachineStateOffline
	capacity := 800
	status, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		MachineID:  "main",
		State:      &state,
		MaxBottles: &capacity,
	})
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if status.State != enums.MachineStateOffline {
		t.Fatalf("expected offline, got %s", status.State)
	}
	if status.MaxBottles != 800 {
		t.Fatalf("expected max_bottles 800, got %d", status.MaxBottles)
	}
}

func TestService_UpdateStatusRefusesMaintenanceState(t *testing.T) {
	repo := &fakeRepository{status: mainMachine(enums.MachineStateOnline)}
	svc := mustService(t, repo)

	state := enums.MachineStateMaintenance
	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{MachineID: "main", State: &state})
	if !apperrors.IsCode(err, apperrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestService_UpdateStatusRejectsZeroCapacity(t *testing.T) {
	repo := &fakeRepository{status: mainMachine(enums.MachineStateOnline)}
	svc := mustService(t, repo)

	capacity := 0
	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{MachineID: "main", MaxBottles: &capacity})
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
