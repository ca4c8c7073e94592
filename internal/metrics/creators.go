package metrics

import "github.com/prometheus/client_golang/prometheus"

// Creator cache and crawl Prometheus metrics.
var (
	CreatorLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creatorscout",
			Name:      "creator_lookups_total",
			Help:      "Creator store lookups by outcome",
		},
		[]string{"platform", "outcome"}, // hit / miss / stale / error
	)

	CreatorSavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creatorscout",
			Name:      "creator_saves_total",
			Help:      "Creator store writes by outcome",
		},
		[]string{"platform", "outcome"}, // ok / retry / error
	)

	CreatorFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creatorscout",
			Name:      "creator_fetches_total",
			Help:      "Creator profile crawls by status",
		},
		[]string{"platform", "status"},
	)

	CrawlUnitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creatorscout",
			Name:      "crawl_units_total",
			Help:      "Provider units charged for crawl calls",
		},
		[]string{"provider", "endpoint"},
	)

	CrawlBudgetUnitsRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "creatorscout",
			Name:      "crawl_budget_units_remaining",
			Help:      "Remaining crawl unit budget",
		},
		[]string{"provider", "period"},
	)

	FanoutTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creatorscout",
			Name:      "fanout_tasks_total",
			Help:      "Parallel fan-out tasks by operation and outcome",
		},
		[]string{"op", "outcome"}, // ok / error / panic
	)
)

var creatorMetricsRegistered bool

// RegisterCreatorMetrics registers Prometheus creator metrics. Must be called once from main.
func RegisterCreatorMetrics() {
	if creatorMetricsRegistered {
		return
	}
	prometheus.MustRegister(CreatorLookupsTotal)
	prometheus.MustRegister(CreatorSavesTotal)
	prometheus.MustRegister(CreatorFetchesTotal)
	prometheus.MustRegister(CrawlUnitsTotal)
	prometheus.MustRegister(CrawlBudgetUnitsRemaining)
	prometheus.MustRegister(FanoutTasksTotal)
	creatorMetricsRegistered = true
}
