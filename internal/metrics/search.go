package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creatorscout",
			Name:      "search_requests_total",
			Help:      "Total number of search provider requests",
		},
		[]string{"provider", "status"},
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "creatorscout",
			Name:      "search_request_duration_seconds",
			Help:      "Search provider request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	SearchHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creatorscout",
			Name:      "search_hits_total",
			Help:      "Raw hits returned by search providers",
		},
		[]string{"provider"},
	)

	RankedResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "creatorscout",
			Name:      "ranked_results",
			Help:      "Number of distinct profile results after ranking",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"platform"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creatorscout",
			Name:      "search_cache_total",
			Help:      "Search result cache hits, misses and fresh-search bypasses",
		},
		[]string{"result"}, // "hit" / "miss" / "bypass"
	)

	ProviderAvailable = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "creatorscout",
			Name:      "provider_available",
			Help:      "Whether an upstream provider is accepting calls (1) or blocked (0)",
		},
		[]string{"provider"},
	)

	KeywordSuggestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creatorscout",
			Name:      "keyword_suggestions_total",
			Help:      "Keyword suggestion calls by model and status",
		},
		[]string{"model", "status"},
	)

	KeywordSuggestionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creatorscout",
			Name:      "keyword_suggestion_tokens_total",
			Help:      "Tokens consumed by keyword suggestion",
		},
		[]string{"model", "type"}, // "prompt" / "total"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchRequestDuration)
	prometheus.MustRegister(SearchHitsTotal)
	prometheus.MustRegister(RankedResults)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(ProviderAvailable)
	prometheus.MustRegister(KeywordSuggestionsTotal)
	prometheus.MustRegister(KeywordSuggestionTokensTotal)
	searchMetricsRegistered = true
}
