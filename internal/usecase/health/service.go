package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the creator store is down.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckBlocked indicates a provider blocked after repeated failures.
	CheckBlocked CheckResult = "blocked"
)

// Report aggregates health check results.
type Report struct {
	Status    Status
	Checks    map[string]CheckResult
	Providers map[string]CheckResult
}

type component struct {
	name   string
	pinger Pinger
}

// Service coordinates health checks.
type Service struct {
	store      Pinger
	components []component
	providers  []Provider
}

// New creates a Service around the creator store.
func New(store Pinger) *Service {
	return &Service{store: store}
}

// WithComponent adds an optional store whose failure degrades the service.
func (s *Service) WithComponent(name string, p Pinger) *Service {
	if p != nil {
		s.components = append(s.components, component{name: name, pinger: p})
	}
	return s
}

// WithProviders adds upstream providers to report on.
func (s *Service) WithProviders(ps ...Provider) *Service {
	s.providers = append(s.providers, ps...)
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.components)+1)
	status := Healthy

	if err := s.store.Ping(ctx); err != nil {
		checks["creator_store"] = CheckError
		status = Unhealthy
	} else {
		checks["creator_store"] = CheckOK
	}

	for _, c := range s.components {
		if err := c.pinger.Ping(ctx); err != nil {
			checks[c.name] = CheckError
			if status == Healthy {
				status = Degraded
			}
			continue
		}
		checks[c.name] = CheckOK
	}

	providers := make(map[string]CheckResult, len(s.providers))
	for _, p := range s.providers {
		if p.Available() {
			providers[p.Name()] = CheckOK
			continue
		}
		providers[p.Name()] = CheckBlocked
		if status == Healthy {
			status = Degraded
		}
	}

	return Report{Status: status, Checks: checks, Providers: providers}
}
