package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryStore struct {
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (s *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value.(string)
	return true, nil
}

func (s *memoryStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *memoryStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func TestRedisLock_AcquireIsExclusive(t *testing.T) {
	store := newMemoryStore()
	first, err := NewRedisLock(store, "sort:lock:cron", time.Minute)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	second, err := NewRedisLock(store, "sort:lock:cron", time.Minute)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	ok, err := first.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	ok, err = second.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Fatal("second acquire should fail while lock held")
	}
}

func TestRedisLock_ReleaseOnlyByOwner(t *testing.T) {
	store := newMemoryStore()
	holder, _ := NewRedisLock(store, "sort:lock:cron", time.Minute)
	bystander, _ := NewRedisLock(store, "sort:lock:cron", time.Minute)

	if ok, _ := holder.Acquire(context.Background()); !ok {
		t.Fatal("holder acquire failed")
	}

	if err := bystander.Release(context.Background()); err != nil {
		t.Fatalf("bystander release: %v", err)
	}
	if _, ok := store.values["sort:lock:cron"]; !ok {
		t.Fatal("bystander release removed another owner's lock")
	}

	if err := holder.Release(context.Background()); err != nil {
		t.Fatalf("holder release: %v", err)
	}
	if _, ok := store.values["sort:lock:cron"]; ok {
		t.Fatal("holder release did not remove the lock")
	}
}

func TestRedisLock_ReleaseWithoutAcquireIsNoop(t *testing.T) {
	store := newMemoryStore()
	lock, _ := NewRedisLock(store, "sort:lock:cron", time.Minute)
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
}
