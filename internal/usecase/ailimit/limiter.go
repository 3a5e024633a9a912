// Package ailimit enforces per-user AI call budgets over fixed windows.
// Counters live on TTL keys, so windows reset by key expiry instead of a
// stored "last reset" timestamp.
package ailimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/draftzero/draftzero/internal/domain"
	"github.com/draftzero/draftzero/internal/metrics"
)

// CounterStore is the persistence interface for budget counters.
// IncrBy returns the counter value after the increment.
type CounterStore interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
}

// Limiter tracks AI calls per user per day and per calendar month.
// A limit of 0 means unlimited for that window.
type Limiter struct {
	store        CounterStore
	dailyLimit   int64
	monthlyLimit int64
	logger       *zap.Logger
}

// New creates a Limiter.
func New(store CounterStore, dailyLimit, monthlyLimit int64, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{
		store:        store,
		dailyLimit:   dailyLimit,
		monthlyLimit: monthlyLimit,
		logger:       logger,
	}
}

// Allow consumes one AI call from the user's budget. Returns
// ErrAIQuotaExceeded once either window's limit is passed; the increment that
// detected the overrun is harmless since the key expires with the window.
func (l *Limiter) Allow(ctx context.Context, userID string) error {
	now := time.Now().UTC()

	daily, err := l.store.IncrBy(ctx, dailyKey(userID, now), 1)
	if err != nil {
		return fmt.Errorf("increment daily budget: %w", err)
	}
	if l.dailyLimit > 0 && daily > l.dailyLimit {
		l.logger.Warn("daily AI budget exhausted",
			zap.String("user_id", userID),
			zap.Int64("used", daily),
			zap.Int64("limit", l.dailyLimit),
		)
		return fmt.Errorf("daily limit %d: %w", l.dailyLimit, domain.ErrAIQuotaExceeded)
	}

	monthly, err := l.store.IncrBy(ctx, monthlyKey(userID, now), 1)
	if err != nil {
		return fmt.Errorf("increment monthly budget: %w", err)
	}
	if l.monthlyLimit > 0 && monthly > l.monthlyLimit {
		l.logger.Warn("monthly AI budget exhausted",
			zap.String("user_id", userID),
			zap.Int64("used", monthly),
			zap.Int64("limit", l.monthlyLimit),
		)
		return fmt.Errorf("monthly limit %d: %w", l.monthlyLimit, domain.ErrAIQuotaExceeded)
	}

	return nil
}

// Limits returns the configured daily and monthly caps (0 = unlimited).
func (l *Limiter) Limits() (daily, monthly int64) {
	return l.dailyLimit, l.monthlyLimit
}

// Used returns the calls consumed in the current daily and monthly windows.
func (l *Limiter) Used(ctx context.Context, userID string) (daily, monthly int64, err error) {
	now := time.Now().UTC()

	daily, err = l.store.Get(ctx, dailyKey(userID, now))
	if err != nil {
		return 0, 0, fmt.Errorf("read daily budget: %w", err)
	}
	monthly, err = l.store.Get(ctx, monthlyKey(userID, now))
	if err != nil {
		return 0, 0, fmt.Errorf("read monthly budget: %w", err)
	}

	if l.dailyLimit > 0 {
		metrics.AIBudgetCallsRemaining.WithLabelValues("day").Set(float64(clampZero(l.dailyLimit - daily)))
	}
	if l.monthlyLimit > 0 {
		metrics.AIBudgetCallsRemaining.WithLabelValues("month").Set(float64(clampZero(l.monthlyLimit - monthly)))
	}

	return daily, monthly, nil
}

func clampZero(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

func dailyKey(userID string, t time.Time) string {
	return fmt.Sprintf("%sai_budget:%s:daily:%s", domain.KeyPrefix, userID, t.Format("2006-01-02"))
}

func monthlyKey(userID string, t time.Time) string {
	return fmt.Sprintf("%sai_budget:%s:monthly:%s", domain.KeyPrefix, userID, t.Format("2006-01"))
}
