package creatorscout

import "context"

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status    string            // "ok", "degraded", "error"
	Checks    map[string]string // component → "ok"/"error"
	Providers map[string]string // provider → "ok"/"blocked"
}

// Health checks the creator store, optional components and providers.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	providers := make(map[string]string, len(report.Providers))
	for k, v := range report.Providers {
		providers[k] = string(v)
	}
	return HealthStatus{
		Status:    string(report.Status),
		Checks:    checks,
		Providers: providers,
	}
}
