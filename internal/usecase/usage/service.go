package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/manualrag/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// GetReport builds a token usage report for the given period.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := s.now().UTC()

	var start, end time.Time
	switch period {
	case domusage.PeriodMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	default:
		period = domusage.PeriodDay
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 1)
	}

	b := domusage.Budget{Remaining: -1, ResetsAt: end}
	if s.br != nil {
		if period == domusage.PeriodMonth {
			b = domusage.Budget{
				Limit:     s.br.MonthlyLimit(),
				Used:      s.br.MonthlyUsed(),
				Remaining: s.br.RemainingMonthly(),
				ResetsAt:  s.br.MonthlyResetAt(),
			}
		} else {
			b = domusage.Budget{
				Limit:     s.br.DailyLimit(),
				Used:      s.br.DailyUsed(),
				Remaining: s.br.RemainingDaily(),
				ResetsAt:  s.br.DailyResetAt(),
			}
		}
	}

	return domusage.Report{
		Period:      period,
		PeriodStart: start,
		PeriodEnd:   end,
		Budget:      b,
	}
}
