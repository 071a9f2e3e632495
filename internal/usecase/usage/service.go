// Package usage builds token usage reports.
package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/wayfarer/internal/domain/usage"
	"github.com/kailas-cloud/wayfarer/internal/domain/usage/budget"
	"github.com/kailas-cloud/wayfarer/internal/domain/usage/metrics"
)

// Service handles usage reporting.
type Service struct {
	br             BudgetReader
	costPerMillion float64
}

// New creates a Service. br can be nil (unlimited mode).
// costPerMillion prices consumed tokens in USD per million tokens;
// zero disables cost estimates.
func New(br BudgetReader, costPerMillion float64) *Service {
	return &Service{br: br, costPerMillion: costPerMillion}
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := time.Now().UTC()
	var start, end int64
	var limit, used, remaining int64

	switch period {
	case domusage.PeriodDay:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		dayEnd := dayStart.Add(24 * time.Hour)
		start = dayStart.UnixMilli()
		end = dayEnd.UnixMilli()
		if s.br != nil {
			limit = s.br.DailyLimit()
			used = s.br.DailyUsed()
			remaining = s.br.RemainingDaily()
		}
	case domusage.PeriodMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		monthEnd := monthStart.AddDate(0, 1, 0)
		start = monthStart.UnixMilli()
		end = monthEnd.UnixMilli()
		if s.br != nil {
			limit = s.br.MonthlyLimit()
			used = s.br.MonthlyUsed()
			remaining = s.br.RemainingMonthly()
		}
	default:
		// total, no period boundaries
		if s.br != nil {
			limit = s.br.MonthlyLimit()
			used = s.br.MonthlyUsed()
			remaining = s.br.RemainingMonthly()
		}
	}

	exhausted := limit > 0 && remaining <= 0
	resetsAt := end

	b := budget.New(int(limit), int(remaining), exhausted, resetsAt)
	m := metrics.New(0, int(used), s.costMillidollars(used)) // requests not tracked per-period yet

	return domusage.NewReport(period, start, end, m, b)
}

// costMillidollars estimates the cost of consumed tokens (1 USD = 1000).
func (s *Service) costMillidollars(tokens int64) int {
	if s.costPerMillion <= 0 || tokens <= 0 {
		return 0
	}
	return int(float64(tokens) / 1e6 * s.costPerMillion * 1000)
}
