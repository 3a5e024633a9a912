// Package usage builds per-user AI budget reports.
package usage

import (
	"context"
	"fmt"
	"time"
)

// Period selects the reporting window.
type Period string

// Reporting windows.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// Report describes one user's AI budget state for a period.
type Report struct {
	Period    Period `json:"period"`
	Limit     int64  `json:"limit"` // 0 = unlimited
	Used      int64  `json:"used"`
	Remaining int64  `json:"remaining"` // -1 = unlimited
	Exhausted bool   `json:"exhausted"`
	ResetsAt  int64  `json:"resetsAt"` // unix millis of window end
}

// Service handles usage reporting.
type Service struct {
	br BudgetReader
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader) *Service {
	return &Service{br: br}
}

// GetReport builds a budget report for the given user and period.
func (s *Service) GetReport(ctx context.Context, userID string, period Period) (Report, error) {
	now := time.Now().UTC()

	var limit, used int64
	var resetsAt time.Time
	switch period {
	case PeriodDay:
		resetsAt = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
		if s.br != nil {
			limit, _ = s.br.Limits()
			d, _, err := s.br.Used(ctx, userID)
			if err != nil {
				return Report{}, fmt.Errorf("read usage: %w", err)
			}
			used = d
		}
	case PeriodMonth:
		resetsAt = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
		if s.br != nil {
			_, limit = s.br.Limits()
			_, m, err := s.br.Used(ctx, userID)
			if err != nil {
				return Report{}, fmt.Errorf("read usage: %w", err)
			}
			used = m
		}
	default:
		return Report{}, fmt.Errorf("unknown period %q", period)
	}

	remaining := int64(-1)
	if limit > 0 {
		remaining = limit - used
		if remaining < 0 {
			remaining = 0
		}
	}

	return Report{
		Period:    period,
		Limit:     limit,
		Used:      used,
		Remaining: remaining,
		Exhausted: limit > 0 && remaining <= 0,
		ResetsAt:  resetsAt.UnixMilli(),
	}, nil
}
