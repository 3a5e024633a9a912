package ailimit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/draftzero/draftzero/internal/domain"
)

type mockCounters struct {
	counters map[string]int64
	incrErr  error
}

func newMockCounters() *mockCounters {
	return &mockCounters{counters: make(map[string]int64)}
}

func (m *mockCounters) IncrBy(_ context.Context, key string, val int64) (int64, error) {
	if m.incrErr != nil {
		return 0, m.incrErr
	}
	m.counters[key] += val
	return m.counters[key], nil
}

func (m *mockCounters) Get(_ context.Context, key string) (int64, error) {
	return m.counters[key], nil
}

func TestAllow_WithinBudget(t *testing.T) {
	mc := newMockCounters()
	limiter := New(mc, 3, 10, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := limiter.Allow(ctx, "user-1"); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
	}
}

func TestAllow_DailyExhausted(t *testing.T) {
	mc := newMockCounters()
	limiter := New(mc, 2, 0, zap.NewNop())
	ctx := context.Background()

	_ = limiter.Allow(ctx, "user-1")
	_ = limiter.Allow(ctx, "user-1")

	err := limiter.Allow(ctx, "user-1")
	if !errors.Is(err, domain.ErrAIQuotaExceeded) {
		t.Fatalf("expected ErrAIQuotaExceeded, got %v", err)
	}
}

func TestAllow_MonthlyExhausted(t *testing.T) {
	mc := newMockCounters()
	limiter := New(mc, 0, 1, zap.NewNop())
	ctx := context.Background()

	_ = limiter.Allow(ctx, "user-1")

	err := limiter.Allow(ctx, "user-1")
	if !errors.Is(err, domain.ErrAIQuotaExceeded) {
		t.Fatalf("expected ErrAIQuotaExceeded, got %v", err)
	}
}

func TestAllow_ZeroLimitIsUnlimited(t *testing.T) {
	mc := newMockCounters()
	limiter := New(mc, 0, 0, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		if err := limiter.Allow(ctx, "user-1"); err != nil {
			t.Fatalf("unexpected error at call %d: %v", i+1, err)
		}
	}
}

func TestAllow_BudgetsArePerUser(t *testing.T) {
	mc := newMockCounters()
	limiter := New(mc, 1, 0, zap.NewNop())
	ctx := context.Background()

	if err := limiter.Allow(ctx, "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := limiter.Allow(ctx, "user-2"); err != nil {
		t.Fatalf("expected independent budget for second user, got %v", err)
	}
}

func TestAllow_KeyLayout(t *testing.T) {
	mc := newMockCounters()
	limiter := New(mc, 10, 10, zap.NewNop())

	if err := limiter.Allow(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sawDaily, sawMonthly bool
	for key := range mc.counters {
		if strings.HasPrefix(key, "draftzero:ai_budget:user-1:daily:") {
			sawDaily = true
		}
		if strings.HasPrefix(key, "draftzero:ai_budget:user-1:monthly:") {
			sawMonthly = true
		}
	}
	if !sawDaily || !sawMonthly {
		t.Fatalf("expected daily and monthly keys, got %v", mc.counters)
	}
}

func TestUsed_ReadsBothWindows(t *testing.T) {
	mc := newMockCounters()
	limiter := New(mc, 10, 20, zap.NewNop())
	ctx := context.Background()

	_ = limiter.Allow(ctx, "user-1")
	_ = limiter.Allow(ctx, "user-1")

	daily, monthly, err := limiter.Used(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if daily != 2 || monthly != 2 {
		t.Fatalf("expected 2/2 used, got %d/%d", daily, monthly)
	}
}
