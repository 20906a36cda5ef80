package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/rattapoomjame/Sort/internal/dashboard"
	"github.com/rattapoomjame/Sort/pkg/db/models"
	"github.com/rattapoomjame/Sort/pkg/logger"
	"github.com/rattapoomjame/Sort/pkg/metrics"
)

type statsReader interface {
	Stats(ctx context.Context) (dashboard.Stats, error)
}

type machineReader interface {
	Status(ctx context.Context, machineID string) (*models.MachineStatus, error)
}

// TelemetryJobParams configure the metrics snapshot job.
type TelemetryJobParams struct {
	Logger    *logger.Logger
	Stats     statsReader
	Machines  machineReader
	Metrics   *metrics.TelemetryMetrics
	MachineID string
	Interval  time.Duration
}

// NewTelemetryJob refreshes the business gauges from the database.
func NewTelemetryJob(params TelemetryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Stats == nil {
		return nil, fmt.Errorf("dashboard service required")
	}
	if params.Machines == nil {
		return nil, fmt.Errorf("machine service required")
	}
	if params.Metrics == nil {
		return nil, fmt.Errorf("telemetry metrics required")
	}
	if params.MachineID == "" {
		return nil, fmt.Errorf("machine id required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &telemetryJob{
		logg:      params.Logger,
		stats:     params.Stats,
		machines:  params.Machines,
		metrics:   params.Metrics,
		machineID: params.MachineID,
		interval:  interval,
	}, nil
}

type telemetryJob struct {
	logg      *logger.Logger
	stats     statsReader
	machines  machineReader
	metrics   *metrics.TelemetryMetrics
	machineID string
	interval  time.Duration
}

func (j *telemetryJob) Name() string            { return "telemetry" }
func (j *telemetryJob) Interval() time.Duration { return j.interval }

func (j *telemetryJob) Run(ctx context.Context) error {
	stats, err := j.stats.Stats(ctx)
	if err != nil {
		return fmt.Errorf("telemetry stats: %w", err)
	}
	j.metrics.SetUsers(stats.UserCount)
	j.metrics.SetPoints(stats.TotalPoints)
	j.metrics.SetPendingWithdrawals(stats.PendingWithdrawals)

	status, err := j.machines.Status(ctx, j.machineID)
	if err != nil {
		return fmt.Errorf("telemetry machine status: %w", err)
	}
	j.metrics.SetBottles(j.machineID, "glass", status.GlassCount)
	j.metrics.SetBottles(j.machineID, "plastic", status.PlasticCount)
	j.metrics.SetBottles(j.machineID, "can", status.CanCount)
	if status.CPUTemp != nil {
		j.metrics.SetCPUTemp(j.machineID, *status.CPUTemp)
	}
	j.metrics.SetStorageUsed(j.machineID, status.StorageRatio())
	return nil
}
