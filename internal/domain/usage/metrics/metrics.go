package metrics

// Metrics holds crawl API usage for a time period.
type Metrics struct {
	requests int64
	units    int64
}

// New creates a Metrics snapshot.
func New(requests, units int64) Metrics {
	return Metrics{requests: requests, units: units}
}

// Requests returns the number of crawl API calls.
func (m Metrics) Requests() int64 { return m.requests }

// Units returns the provider units charged.
func (m Metrics) Units() int64 { return m.units }
