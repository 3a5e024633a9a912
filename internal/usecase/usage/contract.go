package usage

import "context"

// BudgetReader exposes the AI call limiter's counters for reporting.
type BudgetReader interface {
	Limits() (daily, monthly int64)
	Used(ctx context.Context, userID string) (daily, monthly int64, err error)
}
