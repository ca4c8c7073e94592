package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/creatorscout/internal/domain/usage"
	"github.com/kailas-cloud/creatorscout/internal/domain/usage/budget"
	"github.com/kailas-cloud/creatorscout/internal/domain/usage/metrics"
)

// Service handles crawl usage reporting.
type Service struct {
	br BudgetReader
}

// New creates a Service. br can be nil (crawling untracked).
func New(br BudgetReader) *Service {
	return &Service{br: br}
}

// GetReport builds a usage report for the given period. Unknown periods
// report the month.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := time.Now().UTC()
	var (
		start, end             time.Time
		limit, used, remaining int64
		requests               int64
		provider               string
	)

	if period == domusage.PeriodDay {
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.Add(24 * time.Hour)
		if s.br != nil {
			limit, used, remaining = s.br.DailyLimit(), s.br.DailyUsed(), s.br.RemainingDaily()
			requests = s.br.DailyRequests()
		}
	} else {
		period = domusage.PeriodMonth
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
		if s.br != nil {
			limit, used, remaining = s.br.MonthlyLimit(), s.br.MonthlyUsed(), s.br.RemainingMonthly()
			requests = s.br.MonthlyRequests()
		}
	}
	if s.br != nil {
		provider = s.br.Provider()
	}

	exhausted := limit > 0 && remaining <= 0
	b := budget.New(limit, remaining, exhausted, end.UnixMilli())
	m := metrics.New(requests, used)

	return domusage.NewReport(period, start.UnixMilli(), end.UnixMilli(), provider, m, b)
}
