package creatorscout

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/creatorscout/internal/domain/usage"
)

// UsagePeriod is the aggregation granularity for usage reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport contains crawl usage for a time period.
type UsageReport struct {
	Period      UsagePeriod
	PeriodStart time.Time
	PeriodEnd   time.Time
	Provider    string
	Metrics     UsageMetrics
	Budget      BudgetStatus
}

// UsageMetrics tracks crawl consumption.
type UsageMetrics struct {
	Requests int64
	Units    int64
}

// BudgetStatus tracks the crawl unit quota. A zero limit means unlimited.
type BudgetStatus struct {
	UnitsLimit     int64
	UnitsRemaining int64
	IsExhausted    bool
	ResetsAt       time.Time
}

// Usage returns a crawl usage report for the given period. Unknown periods
// report the month.
// Observer always records success: the underlying use-case is in-memory
// and does not produce errors.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) UsageReport {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, nil) }()

	report := c.usage.GetReport(ctx, domusage.Period(period))
	m := report.Metrics()
	b := report.Budget()

	return UsageReport{
		Period:      UsagePeriod(report.Period()),
		PeriodStart: time.UnixMilli(report.PeriodStart()).UTC(),
		PeriodEnd:   time.UnixMilli(report.PeriodEnd()).UTC(),
		Provider:    report.Provider(),
		Metrics: UsageMetrics{
			Requests: m.Requests(),
			Units:    m.Units(),
		},
		Budget: BudgetStatus{
			UnitsLimit:     b.UnitsLimit(),
			UnitsRemaining: b.UnitsRemaining(),
			IsExhausted:    b.IsExhausted(),
			ResetsAt:       time.UnixMilli(b.ResetsAt()).UTC(),
		},
	}
}
