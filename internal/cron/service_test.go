package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rattapoomjame/Sort/pkg/logger"
)

type recordedJob struct {
	name     string
	interval time.Duration
	runs     int
	err      error
}

func (j *recordedJob) Name() string            { return j.name }
func (j *recordedJob) Interval() time.Duration { return j.interval }
func (j *recordedJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

type fakeLock struct {
	acquired  bool
	acquires  int
	releases  int
	available bool
}

func (l *fakeLock) Acquire(ctx context.Context) (bool, error) {
	l.acquires++
	if !l.available {
		return false, nil
	}
	l.acquired = true
	return true, nil
}

func (l *fakeLock) Release(ctx context.Context) error {
	l.releases++
	l.acquired = false
	return nil
}

func newTestService(t *testing.T, registry *Registry, lock Lock) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Registry: registry,
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("cron service: %v", err)
	}
	return svc
}

func TestRunCycle_RunsDueJobsAndReleasesLock(t *testing.T) {
	job := &recordedJob{name: "offline-watch", interval: time.Minute}
	lock := &fakeLock{available: true}
	svc := newTestService(t, NewRegistry(job), lock)

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle error: %v", err)
	}
	if job.runs != 1 {
		t.Fatalf("expected 1 run, got %d", job.runs)
	}
	if lock.releases != 1 {
		t.Fatalf("lock not released: %+v", lock)
	}
}

func TestRunCycle_SkipsJobsNotYetDue(t *testing.T) {
	fast := &recordedJob{name: "offline-watch", interval: time.Minute}
	slow := &recordedJob{name: "activity-retention", interval: 24 * time.Hour}
	lock := &fakeLock{available: true}
	svc := newTestService(t, NewRegistry(fast, slow), lock)

	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("first cycle: %v", err)
	}

	svc.now = func() time.Time { return base.Add(2 * time.Minute) }
	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("second cycle: %v", err)
	}

	if fast.runs != 2 {
		t.Fatalf("fast job should run twice, got %d", fast.runs)
	}
	if slow.runs != 1 {
		t.Fatalf("slow job should run once, got %d", slow.runs)
	}
}

func TestRunCycle_SkipsWhenLockHeldElsewhere(t *testing.T) {
	job := &recordedJob{name: "offline-watch", interval: time.Minute}
	lock := &fakeLock{available: false}
	svc := newTestService(t, NewRegistry(job), lock)

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle error: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job ran without the lock")
	}
}

func TestRunCycle_JobErrorDoesNotStopOthers(t *testing.T) {
	failing := &recordedJob{name: "telemetry", interval: time.Minute, err: errors.New("db down")}
	healthy := &recordedJob{name: "offline-watch", interval: time.Minute}
	lock := &fakeLock{available: true}
	svc := newTestService(t, NewRegistry(failing, healthy), lock)

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle error: %v", err)
	}
	if healthy.runs != 1 {
		t.Fatalf("healthy job skipped after failure")
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	job := &recordedJob{name: "offline-watch", interval: time.Minute}
	lock := &fakeLock{available: true}
	svc := newTestService(t, NewRegistry(job), lock)
	svc.tick = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if job.runs == 0 {
		t.Fatal("job never ran")
	}
}
