package machine

import (
	"context"
	"testing"
	"time"

	"github.com/rattapoomjame/Sort/pkg/db/models"
	"github.com/rattapoomjame/Sort/pkg/enums"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMachineTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statusTable := `
CREATE TABLE IF NOT EXISTS machine_status (
  machine_id TEXT PRIMARY KEY,
  state TEXT NOT NULL DEFAULT 'offline',
  glass_count INTEGER NOT NULL DEFAULT 0,
  plastic_count INTEGER NOT NULL DEFAULT 0,
  can_count INTEGER NOT NULL DEFAULT 0,
  max_bottles INTEGER NOT NULL DEFAULT 500,
  cpu_temp REAL,
  storage_used REAL,
  firmware TEXT,
  last_seen_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	maintenanceTable := `
CREATE TABLE IF NOT EXISTS maintenance_logs (
  id TEXT PRIMARY KEY,
  machine_id TEXT NOT NULL,
  note TEXT NOT NULL,
  started_at DATETIME NOT NULL,
  ended_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(statusTable).Error)
	require.NoError(t, db.Exec(maintenanceTable).Error)
	require.NoError(t, db.Exec(`INSERT INTO machine_status (machine_id, state) VALUES ('main', 'offline')`).Error)
	return db
}

func TestRepository_HeartbeatBringsMachineOnline(t *testing.T) {
	db := setupMachineTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	firmware := "1.4.2"
	cpu := 48.5
	storage := 0.25
	rows, err := repo.Heartbeat(ctx, "main", HeartbeatPing{
		Firmware:    &firmware,
		CPUTemp:     &cpu,
		StorageUsed: &storage,
		SeenAt:      time.Now().UTC(),
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	status, err := repo.Get(ctx, "main")
	require.NoError(t, err)
	require.Equal(t, enums.MachineStateOnline, status.State)
	require.NotNil(t, status.LastSeenAt)
	require.NotNil(t, status.Firmware)
	require.Equal(t, "1.4.2", *status.Firmware)
	require.NotNil(t, status.CPUTemp)
	require.InDelta(t, 48.5, *status.CPUTemp, 0.001)
	require.NotNil(t, status.StorageUsed)
	require.InDelta(t, 0.25, *status.StorageUsed, 0.001)
}

func TestRepository_HeartbeatSkipsMaintenanceState(t *testing.T) {
	db := setupMachineTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SetState(ctx, "main", enums.MachineStateMaintenance))

	rows, err := repo.Heartbeat(ctx, "main", HeartbeatPing{SeenAt: time.Now().UTC()})
	require.NoError(t, err)
	require.EqualValues(t, 0, rows)

	status, err := repo.Get(ctx, "main")
	require.NoError(t, err)
	require.Equal(t, enums.MachineStateMaintenance, status.State)
}

func TestRepository_IncrementCount(t *testing.T) {
	db := setupMachineTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.IncrementCount(ctx, "main", enums.ItemTypeGlass))
	require.NoError(t, repo.IncrementCount(ctx, "main", enums.ItemTypeGlass))
	require.NoError(t, repo.IncrementCount(ctx, "main", enums.ItemTypeCan))

	status, err := repo.Get(ctx, "main")
	require.NoError(t, err)
	require.Equal(t, 2, status.GlassCount)
	require.Equal(t, 0, status.PlasticCount)
	require.Equal(t, 1, status.CanCount)
	require.Equal(t, 3, status.TotalBottles())
}

func TestRepository_MarkStaleOffline(t *testing.T) {
	db := setupMachineTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	stale := time.Now().UTC().Add(-10 * time.Minute)
	_, err := repo.Heartbeat(ctx, "main", HeartbeatPing{SeenAt: stale})
	require.NoError(t, err)

	rows, err := repo.MarkStaleOffline(ctx, time.Now().UTC().Add(-5*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	status, err := repo.Get(ctx, "main")
	require.NoError(t, err)
	require.Equal(t, enums.MachineStateOffline, status.State)
}

func TestRepository_MaintenanceLifecycle(t *testing.T) {
	db := setupMachineTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.CreateMaintenance(ctx, newMaintenanceLog("main", "bin jam", now)))

	logs, err := repo.ListMaintenance(ctx, "main", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Nil(t, logs[0].EndedAt)

	closed, err := repo.CloseOpenMaintenance(ctx, "main", now.Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, closed)

	logs, err = repo.ListMaintenance(ctx, "main", 10)
	require.NoError(t, err)
	require.NotNil(t, logs[0].EndedAt)
}

func newMaintenanceLog(machineID, note string, startedAt time.Time) *models.MaintenanceLog {
	return &models.MaintenanceLog{MachineID: machineID, Note: note, StartedAt: startedAt}
}
