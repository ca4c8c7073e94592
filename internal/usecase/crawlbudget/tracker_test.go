package crawlbudget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/creatorscout/internal/domain"
)

func TestTracker_RejectWhenExceeded(t *testing.T) {
	tr := New("ensemble", 100, 0, ActionReject, zap.NewNop())

	tr.Record(100)

	if err := tr.Check(context.Background()); !errors.Is(err, domain.ErrCrawlBudgetExceeded) {
		t.Fatalf("expected ErrCrawlBudgetExceeded, got %v", err)
	}
}

func TestTracker_WarnWhenExceeded(t *testing.T) {
	tr := New("ensemble", 100, 0, ActionWarn, zap.NewNop())

	tr.Record(200)

	if err := tr.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error for warn action, got %v", err)
	}
}

func TestTracker_MonthlyReject(t *testing.T) {
	tr := New("ensemble", 0, 500, ActionReject, zap.NewNop())

	tr.Record(500)

	if err := tr.Check(context.Background()); !errors.Is(err, domain.ErrCrawlBudgetExceeded) {
		t.Fatalf("expected ErrCrawlBudgetExceeded for monthly limit, got %v", err)
	}
}

func TestTracker_UnlimitedWhenZero(t *testing.T) {
	tr := New("ensemble", 0, 0, ActionReject, zap.NewNop())

	tr.Record(999999999)

	if err := tr.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error for unlimited budget, got %v", err)
	}
	if tr.RemainingDaily() != -1 || tr.RemainingMonthly() != -1 {
		t.Errorf("remaining = %d/%d, want -1/-1", tr.RemainingDaily(), tr.RemainingMonthly())
	}
}

func TestTracker_RemainingAndRequests(t *testing.T) {
	tr := New("ensemble", 1000, 10000, ActionWarn, zap.NewNop())

	tr.Record(300)
	tr.Record(0)

	if got := tr.RemainingDaily(); got != 700 {
		t.Errorf("RemainingDaily() = %d, want 700", got)
	}
	if got := tr.RemainingMonthly(); got != 9700 {
		t.Errorf("RemainingMonthly() = %d, want 9700", got)
	}
	if got := tr.DailyRequests(); got != 2 {
		t.Errorf("DailyRequests() = %d, want 2", got)
	}

	tr.Record(5000)
	if got := tr.RemainingDaily(); got != 0 {
		t.Errorf("RemainingDaily() = %d, want 0 once over the limit", got)
	}
}

type mockStore struct {
	mu     sync.Mutex
	data   map[string]int64
	getErr error
	setErr error
}

func newMockStore() *mockStore { return &mockStore{data: make(map[string]int64)} }

func (m *mockStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] += val
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

func TestTracker_WithStore_LoadsValues(t *testing.T) {
	store := newMockStore()
	tr := New("ensemble", 1000, 10000, ActionReject, zap.NewNop())
	now := time.Now().UTC()
	store.data[tr.dailyKey(now, "units")] = 300
	store.data[tr.monthlyKey(now, "units")] = 5000
	store.data[tr.monthlyKey(now, "requests")] = 12

	tr.WithStore(context.Background(), store)

	if tr.DailyUsed() != 300 {
		t.Errorf("DailyUsed() = %d, want 300", tr.DailyUsed())
	}
	if tr.MonthlyUsed() != 5000 {
		t.Errorf("MonthlyUsed() = %d, want 5000", tr.MonthlyUsed())
	}
	if tr.MonthlyRequests() != 12 {
		t.Errorf("MonthlyRequests() = %d, want 12", tr.MonthlyRequests())
	}
}

func TestTracker_Record_PersistsToStore(t *testing.T) {
	store := newMockStore()
	tr := New("ensemble", 10000, 100000, ActionWarn, zap.NewNop()).WithStore(context.Background(), store)

	tr.Record(100)
	tr.Record(200)

	now := time.Now().UTC()
	store.mu.Lock()
	defer store.mu.Unlock()
	if v := store.data[tr.dailyKey(now, "units")]; v != 300 {
		t.Errorf("stored daily units = %d, want 300", v)
	}
	if v := store.data[tr.monthlyKey(now, "requests")]; v != 2 {
		t.Errorf("stored monthly requests = %d, want 2", v)
	}
}

func TestTracker_StoreErrorsAreNotFatal(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("redis down")
	store.setErr = errors.New("redis down")
	tr := New("ensemble", 100, 0, ActionReject, zap.NewNop()).WithStore(context.Background(), store)

	tr.Record(40)

	if tr.DailyUsed() != 40 {
		t.Errorf("DailyUsed() = %d, want in-memory 40", tr.DailyUsed())
	}
	if err := tr.Check(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTracker_ConcurrentRecord(t *testing.T) {
	tr := New("ensemble", 0, 0, ActionWarn, zap.NewNop())

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Record(2)
		}()
	}
	wg.Wait()

	if tr.DailyUsed() != 100 || tr.DailyRequests() != 50 {
		t.Errorf("used=%d requests=%d, want 100/50", tr.DailyUsed(), tr.DailyRequests())
	}
}
