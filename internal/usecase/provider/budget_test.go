package provider

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/manualrag/internal/domain"
)

func TestBudgetTracker_RejectWhenExceeded(t *testing.T) {
	bt := NewBudgetTracker("test", 100, 0, BudgetActionReject, zap.NewNop())

	bt.Record(100)

	err := bt.Check(t.Context())
	if !errors.Is(err, domain.ErrTokenQuotaExceeded) {
		t.Fatalf("expected domain.ErrTokenQuotaExceeded, got %v", err)
	}
}

func TestBudgetTracker_WarnWhenExceeded(t *testing.T) {
	bt := NewBudgetTracker("test", 100, 0, BudgetActionWarn, zap.NewNop())

	bt.Record(200)

	if err := bt.Check(t.Context()); err != nil {
		t.Fatalf("expected nil error for warn action, got %v", err)
	}
}

func TestBudgetTracker_MonthlyReject(t *testing.T) {
	bt := NewBudgetTracker("test", 0, 500, BudgetActionReject, zap.NewNop())

	bt.Record(500)

	err := bt.Check(t.Context())
	if !errors.Is(err, domain.ErrTokenQuotaExceeded) {
		t.Fatalf("expected domain.ErrTokenQuotaExceeded for monthly limit, got %v", err)
	}
}

func TestBudgetTracker_UnlimitedWhenZero(t *testing.T) {
	bt := NewBudgetTracker("test", 0, 0, BudgetActionReject, zap.NewNop())

	bt.Record(999999999)

	if err := bt.Check(t.Context()); err != nil {
		t.Fatalf("expected nil error for unlimited budget, got %v", err)
	}
	if bt.RemainingDaily() != -1 || bt.RemainingMonthly() != -1 {
		t.Errorf("expected -1/-1 remaining, got %d/%d", bt.RemainingDaily(), bt.RemainingMonthly())
	}
}

func TestBudgetTracker_Remaining(t *testing.T) {
	bt := NewBudgetTracker("test", 1000, 10000, BudgetActionWarn, zap.NewNop())

	bt.Record(300)

	if daily := bt.RemainingDaily(); daily != 700 {
		t.Errorf("expected daily remaining 700, got %d", daily)
	}
	if monthly := bt.RemainingMonthly(); monthly != 9700 {
		t.Errorf("expected monthly remaining 9700, got %d", monthly)
	}

	bt.Record(5000)
	if daily := bt.RemainingDaily(); daily != 0 {
		t.Errorf("expected overspent daily remaining clamped to 0, got %d", daily)
	}
}

func TestBudgetTracker_DailyRollover(t *testing.T) {
	now := time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC)
	bt := NewBudgetTracker("test", 100, 1000, BudgetActionReject, zap.NewNop()).
		withClock(func() time.Time { return now })

	bt.Record(100)
	if err := bt.Check(t.Context()); err == nil {
		t.Fatal("expected rejection before rollover")
	}

	now = now.Add(2 * time.Minute) // April 1st
	if err := bt.Check(t.Context()); err != nil {
		t.Fatalf("expected budget to reset at day boundary, got %v", err)
	}
	if bt.DailyUsed() != 0 || bt.MonthlyUsed() != 0 {
		t.Errorf("expected counters reset, got daily=%d monthly=%d", bt.DailyUsed(), bt.MonthlyUsed())
	}
	if want := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC); !bt.DailyResetAt().Equal(want) {
		t.Errorf("DailyResetAt = %v, want %v", bt.DailyResetAt(), want)
	}
	if want := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC); !bt.MonthlyResetAt().Equal(want) {
		t.Errorf("MonthlyResetAt = %v, want %v", bt.MonthlyResetAt(), want)
	}
}

func TestParseBudgetAction(t *testing.T) {
	tests := []struct {
		in      string
		want    BudgetAction
		wantErr bool
	}{
		{"", BudgetActionWarn, false},
		{"warn", BudgetActionWarn, false},
		{"reject", BudgetActionReject, false},
		{"block", "", true},
	}
	for _, tc := range tests {
		got, err := ParseBudgetAction(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseBudgetAction(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseBudgetAction(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

type mockBudgetStore struct {
	mu     sync.Mutex
	data   map[string]int64
	getErr error
	setErr error
}

func newMockBudgetStore() *mockBudgetStore {
	return &mockBudgetStore{data: make(map[string]int64)}
}

func (m *mockBudgetStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] += val
	return nil
}

func (m *mockBudgetStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

func (m *mockBudgetStore) value(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

func TestBudgetTracker_WithStore_LoadsValues(t *testing.T) {
	store := newMockBudgetStore()

	bt := NewBudgetTracker("openai", 1000, 10000, BudgetActionReject, zap.NewNop())
	store.data[bt.dailyKey(bt.lastDayReset)] = 300
	store.data[bt.monthlyKey(bt.lastMonthReset)] = 5000

	bt.WithStore(t.Context(), store)

	if bt.DailyUsed() != 300 {
		t.Errorf("expected daily_used=300, got %d", bt.DailyUsed())
	}
	if bt.MonthlyUsed() != 5000 {
		t.Errorf("expected monthly_used=5000, got %d", bt.MonthlyUsed())
	}
}

func TestBudgetTracker_Record_PersistsToStore(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("openai", 10000, 100000, BudgetActionWarn, zap.NewNop())
	bt.WithStore(t.Context(), store)

	bt.Record(100)
	bt.Record(200)

	if got := store.value(bt.dailyKey(bt.lastDayReset)); got != 300 {
		t.Errorf("expected store daily=300, got %d", got)
	}
	if got := store.value(bt.monthlyKey(bt.lastMonthReset)); got != 300 {
		t.Errorf("expected store monthly=300, got %d", got)
	}
}

func TestBudgetTracker_WithStore_LoadError(t *testing.T) {
	store := newMockBudgetStore()
	store.getErr = errors.New("connection refused")

	bt := NewBudgetTracker("openai", 1000, 10000, BudgetActionReject, zap.NewNop())
	bt.WithStore(t.Context(), store)

	if bt.DailyUsed() != 0 || bt.MonthlyUsed() != 0 {
		t.Errorf("expected zero counters on load error, got %d/%d", bt.DailyUsed(), bt.MonthlyUsed())
	}
}

func TestBudgetTracker_Record_StoreWriteError(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("openai", 1000, 10000, BudgetActionWarn, zap.NewNop())
	bt.WithStore(t.Context(), store)

	store.mu.Lock()
	store.setErr = errors.New("write timeout")
	store.mu.Unlock()

	bt.Record(50)

	if bt.DailyUsed() != 50 {
		t.Errorf("expected daily_used=50 even with store error, got %d", bt.DailyUsed())
	}
}

func TestBudgetTracker_KeyFormat(t *testing.T) {
	bt := NewBudgetTracker("openai", 0, 0, BudgetActionWarn, zap.NewNop())
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	if got, want := bt.dailyKey(day), "manualrag:budget:openai:daily:2026-10-19"; got != want {
		t.Errorf("dailyKey = %q, want %q", got, want)
	}
	if got := bt.monthlyKey(day); !strings.HasSuffix(got, ":monthly:2026-10") {
		t.Errorf("monthlyKey = %q, want suffix :monthly:2026-10", got)
	}
}
