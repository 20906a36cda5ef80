package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rattapoomjame/Sort/pkg/config"
)

type memoryIdempotencyStore struct {
	values  map[string]string
	lastTTL time.Duration
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{values: map[string]string{}}
}

func (s *memoryIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *memoryIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.lastTTL = ttl
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value.(string)
	return true, nil
}

func (s *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "sort:idempotency:" + scope + ":" + id
}

func (s *memoryIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func countingHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{"points":5}}`))
	})
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	handler := Idempotency(config.IdempotencyConfig{}, store, nil)(countingHandler(&calls))

	body := `{"phone":"0812345678","label":"glass"}`
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/addPoint", strings.NewReader(body))
		req.Header.Set("Idempotency-Key", "device-42")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d status = %d", i+1, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"points":5`) {
			t.Fatalf("attempt %d body = %s", i+1, rec.Body.String())
		}
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
}

func TestIdempotency_RejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	handler := Idempotency(config.IdempotencyConfig{}, store, nil)(countingHandler(&calls))

	first := httptest.NewRequest("POST", "/api/addPoint", strings.NewReader(`{"phone":"0812345678"}`))
	first.Header.Set("Idempotency-Key", "device-42")
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest("POST", "/api/addPoint", strings.NewReader(`{"phone":"0899999999"}`))
	second.Header.Set("Idempotency-Key", "device-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, second)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestIdempotency_RequiresHeaderOnGuardedRoutes(t *testing.T) {
	handler := Idempotency(config.IdempotencyConfig{}, newMemoryIdempotencyStore(), nil)(countingHandler(new(int)))

	req := httptest.NewRequest("POST", "/api/addPoint", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestIdempotency_IgnoresUnguardedRoutes(t *testing.T) {
	calls := 0
	handler := Idempotency(config.IdempotencyConfig{}, newMemoryIdempotencyStore(), nil)(countingHandler(&calls))

	req := httptest.NewRequest("GET", "/api/getPoint", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || calls != 1 {
		t.Fatalf("unguarded route altered: status=%d calls=%d", rec.Code, calls)
	}
}

func TestIdempotency_TTLComesFromConfig(t *testing.T) {
	store := newMemoryIdempotencyStore()
	cfg := config.IdempotencyConfig{DepositTTL: time.Hour, WithdrawalTTL: 2 * time.Hour}
	handler := Idempotency(cfg, store, nil)(countingHandler(new(int)))

	req := httptest.NewRequest(http.MethodPost, "/api/addPoint", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "dep-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if store.lastTTL != time.Hour {
		t.Fatalf("deposit ttl = %v, want 1h", store.lastTTL)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/withdrawals", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "wd-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if store.lastTTL != 2*time.Hour {
		t.Fatalf("withdrawal ttl = %v, want 2h", store.lastTTL)
	}
}
