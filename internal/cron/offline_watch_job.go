package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/rattapoomjame/Sort/pkg/logger"
)

type machineWatcher interface {
	MarkStaleOffline(ctx context.Context, threshold time.Duration) (int64, error)
}

// OfflineWatchJobParams configure the heartbeat watcher.
type OfflineWatchJobParams struct {
	Logger    *logger.Logger
	Machines  machineWatcher
	Threshold time.Duration
	Interval  time.Duration
}

// NewOfflineWatchJob flips machines whose heartbeat went silent to offline.
func NewOfflineWatchJob(params OfflineWatchJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Machines == nil {
		return nil, fmt.Errorf("machine service required")
	}
	if params.Threshold <= 0 {
		return nil, fmt.Errorf("offline threshold must be positive")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	return &offlineWatchJob{
		logg:      params.Logger,
		machines:  params.Machines,
		threshold: params.Threshold,
		interval:  interval,
	}, nil
}

type offlineWatchJob struct {
	logg      *logger.Logger
	machines  machineWatcher
	threshold time.Duration
	interval  time.Duration
}

func (j *offlineWatchJob) Name() string            { return "offline-watch" }
func (j *offlineWatchJob) Interval() time.Duration { return j.interval }

func (j *offlineWatchJob) Run(ctx context.Context) error {
	flipped, err := j.machines.MarkStaleOffline(ctx, j.threshold)
	if err != nil {
		return fmt.Errorf("offline watch: %w", err)
	}
	if flipped > 0 {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"machines_offlined": flipped,
			"threshold":         j.threshold.String(),
		})
		j.logg.Warn(logCtx, "machines marked offline after missed heartbeats")
	}
	return nil
}
