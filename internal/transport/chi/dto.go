package chi

import (
	"time"

	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	domusage "github.com/kailas-cloud/creatorscout/internal/domain/usage"
	healthuc "github.com/kailas-cloud/creatorscout/internal/usecase/health"
)

type errorCode string

const (
	codeBadRequest          errorCode = "bad_request"
	codeUnauthorized        errorCode = "unauthorized"
	codeValidationFailed    errorCode = "validation_failed"
	codeNotFound            errorCode = "not_found"
	codeRateLimited         errorCode = "rate_limited"
	codeBudgetExceeded      errorCode = "crawl_budget_exceeded"
	codeProviderUnavailable errorCode = "provider_unavailable"
	codeProviderError       errorCode = "provider_error"
	codeNotConfigured       errorCode = "not_configured"
	codeInternalError       errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type searchRequest struct {
	Platform     string   `json:"platform"`
	Topic        string   `json:"topic"`
	Location     string   `json:"location"`
	Keywords     []string `json:"keywords"`
	Limit        int      `json:"limit"`
	MinFollowers int64    `json:"min_followers"`
	MaxFollowers int64    `json:"max_followers"`
	UserID       string   `json:"user_id"`
	SessionID    string   `json:"session_id"`
}

type lookupRequest struct {
	Platform  string   `json:"platform"`
	Usernames []string `json:"usernames"`
	UserID    string   `json:"user_id"`
	SessionID string   `json:"session_id"`
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Usernames []string `json:"usernames"`
}

// creatorResponse is an agent view tagged with its platform.
type creatorResponse struct {
	Platform string `json:"platform"`
	profile.AgentView
}

type searchResponse struct {
	Platform    string            `json:"platform"`
	SessionID   string            `json:"session_id,omitempty"`
	Queries     int               `json:"queries"`
	Count       int               `json:"count"`
	Influencers []creatorResponse `json:"influencers"`
}

type creatorListResponse struct {
	SessionID   string            `json:"session_id,omitempty"`
	Count       int               `json:"count"`
	Influencers []creatorResponse `json:"influencers"`
}

type usageResponse struct {
	Period        string      `json:"period"`
	Provider      string      `json:"provider,omitempty"`
	PeriodStartAt *time.Time  `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time  `json:"period_end_at,omitempty"`
	Usage         usageCounts `json:"usage"`
	Budget        budgetState `json:"budget"`
}

type usageCounts struct {
	Requests int64 `json:"requests"`
	Units    int64 `json:"units"`
}

type budgetState struct {
	UnitsLimit     int64      `json:"units_limit"`
	UnitsRemaining int64      `json:"units_remaining"`
	IsExhausted    bool       `json:"is_exhausted"`
	ResetsAt       *time.Time `json:"resets_at,omitempty"`
}

type healthResponse struct {
	Status    string                          `json:"status"`
	Checks    map[string]healthuc.CheckResult `json:"checks"`
	Providers map[string]healthuc.CheckResult `json:"providers,omitempty"`
}

func creatorsToResponse(ps []profile.Profile) []creatorResponse {
	out := make([]creatorResponse, len(ps))
	for i, p := range ps {
		out[i] = creatorResponse{Platform: string(p.Platform()), AgentView: p.AgentView()}
	}
	return out
}

func usageToResponse(report domusage.Report) usageResponse {
	resp := usageResponse{
		Period:   string(report.Period()),
		Provider: report.Provider(),
		Usage: usageCounts{
			Requests: report.Metrics().Requests(),
			Units:    report.Metrics().Units(),
		},
		Budget: budgetState{
			UnitsLimit:     report.Budget().UnitsLimit(),
			UnitsRemaining: report.Budget().UnitsRemaining(),
			IsExhausted:    report.Budget().IsExhausted(),
		},
	}
	if report.PeriodStart() > 0 {
		start := time.UnixMilli(report.PeriodStart()).UTC()
		end := time.UnixMilli(report.PeriodEnd()).UTC()
		resp.PeriodStartAt = &start
		resp.PeriodEndAt = &end
	}
	if report.Budget().ResetsAt() > 0 {
		resetsAt := time.UnixMilli(report.Budget().ResetsAt()).UTC()
		resp.Budget.ResetsAt = &resetsAt
	}
	return resp
}
