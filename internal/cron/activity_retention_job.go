package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/rattapoomjame/Sort/pkg/logger"
)

const defaultActivityRetentionDays = 90

type activityPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ActivityRetentionJobParams configure the audit-trail pruner.
type ActivityRetentionJobParams struct {
	Logger        *logger.Logger
	Activity      activityPruner
	RetentionDays int
	Interval      time.Duration
}

// NewActivityRetentionJob prunes activity rows older than the retention window.
func NewActivityRetentionJob(params ActivityRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Activity == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = defaultActivityRetentionDays
	}
	interval := params.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &activityRetentionJob{
		logg:      params.Logger,
		activity:  params.Activity,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}, nil
}

type activityRetentionJob struct {
	logg      *logger.Logger
	activity  activityPruner
	retention int
	interval  time.Duration
	now       func() time.Time
}

func (j *activityRetentionJob) Name() string            { return "activity-retention" }
func (j *activityRetentionJob) Interval() time.Duration { return j.interval }

func (j *activityRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.activity.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("activity retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "activity retention complete")
	return nil
}
