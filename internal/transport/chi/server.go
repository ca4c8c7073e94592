package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/creatorscout/internal/domain"
	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/domain/session"
	domusage "github.com/kailas-cloud/creatorscout/internal/domain/usage"
	"github.com/kailas-cloud/creatorscout/internal/logger"
	"github.com/kailas-cloud/creatorscout/internal/usecase/discovery"
	healthuc "github.com/kailas-cloud/creatorscout/internal/usecase/health"
)

const (
	maxBodyBytes   = 1 << 20
	maxLookupNames = 50
)

// Discovery runs searches and lookups.
type Discovery interface {
	Search(ctx context.Context, req discovery.Request) (discovery.Result, error)
	Lookup(ctx context.Context, req discovery.LookupRequest) ([]profile.Profile, error)
}

// SessionReader reads a session ledger.
type SessionReader interface {
	Lookup(ctx context.Context, ref session.Ref, usernames []string) ([]profile.Profile, error)
}

// UsageReporter reports crawl unit usage.
type UsageReporter interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the creatorscout HTTP API.
type Server struct {
	discovery     Discovery
	sessions      SessionReader
	usage         UsageReporter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. sessions may be nil when no ledger
// is configured.
func NewServer(
	disc Discovery,
	sessions SessionReader,
	usage UsageReporter,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		discovery: disc,
		sessions:  sessions,
		usage:     usage,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidPlatform, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidUsername, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrCrawlBudgetExceeded, http.StatusPaymentRequired, codeBudgetExceeded),
		sentinelHandler(domain.ErrProviderUnavailable, http.StatusServiceUnavailable, codeProviderUnavailable),
		sentinelHandler(domain.ErrProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrConfiguration, http.StatusServiceUnavailable, codeNotConfigured),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.SearchInfluencers)
		r.Post("/creators/lookup", s.LookupCreators)
		r.Post("/usernames/extract", s.ExtractUsernames)
		r.Get("/sessions/{user_id}/{session_id}/influencers", s.SessionInfluencers)
		r.Get("/usage", s.GetUsage)
	})
}

// SearchInfluencers handles POST /v1/search.
func (s *Server) SearchInfluencers(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := platform.Parse(req.Platform)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	ref, err := session.FromRequest(req.UserID, req.SessionID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	ctx := logger.WithSession(r.Context(), ref.UserID, ref.SessionID)

	res, err := s.discovery.Search(ctx, discovery.Request{
		Platform:     p,
		Topic:        req.Topic,
		Location:     req.Location,
		Keywords:     req.Keywords,
		Limit:        req.Limit,
		MinFollowers: req.MinFollowers,
		MaxFollowers: req.MaxFollowers,
		Session:      ref,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Platform:    string(p),
		SessionID:   ref.SessionID,
		Queries:     res.Queries,
		Count:       len(res.Profiles),
		Influencers: creatorsToResponse(res.Profiles),
	})
}

// LookupCreators handles POST /v1/creators/lookup.
func (s *Server) LookupCreators(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Usernames) > maxLookupNames {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "too many usernames")
		return
	}
	p, err := platform.Parse(req.Platform)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	ref, err := session.FromRequest(req.UserID, req.SessionID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	ctx := logger.WithSession(r.Context(), ref.UserID, ref.SessionID)

	profiles, err := s.discovery.Lookup(ctx, discovery.LookupRequest{
		Platform:  p,
		Usernames: req.Usernames,
		Session:   ref,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, creatorListResponse{
		SessionID:   ref.SessionID,
		Count:       len(profiles),
		Influencers: creatorsToResponse(profiles),
	})
}

// ExtractUsernames handles POST /v1/usernames/extract.
func (s *Server) ExtractUsernames(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !s.decode(w, r, &req) {
		return
	}
	names := discovery.ExtractUsernames(req.Text)
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, extractResponse{Usernames: names})
}

// SessionInfluencers handles GET /v1/sessions/{user_id}/{session_id}/influencers.
func (s *Server) SessionInfluencers(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, codeNotConfigured, "session ledger is not configured")
		return
	}
	ref, err := session.New(chi.URLParam(r, "user_id"), chi.URLParam(r, "session_id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	ctx := logger.WithSession(r.Context(), ref.UserID, ref.SessionID)

	profiles, err := s.sessions.Lookup(ctx, ref, r.URL.Query()["username"])
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, creatorListResponse{
		SessionID:   ref.SessionID,
		Count:       len(profiles),
		Influencers: creatorsToResponse(profiles),
	})
}

// GetUsage handles GET /v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period := domusage.PeriodMonth
	if r.URL.Query().Get("period") == string(domusage.PeriodDay) {
		period = domusage.PeriodDay
	}
	report := s.usage.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, usageToResponse(report))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{
		Status:    string(report.Status),
		Checks:    report.Checks,
		Providers: report.Providers,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Validation errors carry the caller's own input and are returned whole.
func safeDomainMessage(err error) string {
	for _, s := range []error{domain.ErrInvalidRequest, domain.ErrInvalidPlatform, domain.ErrInvalidUsername} {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrRateLimited,
		domain.ErrCrawlBudgetExceeded,
		domain.ErrProviderUnavailable,
		domain.ErrProviderError,
		domain.ErrConfiguration,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
