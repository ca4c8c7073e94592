// Package discovery runs the creator search flows: query formulation,
// provider search, ranking, cache sync and session recording.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/creatorscout/internal/domain"
	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/domain/search"
	"github.com/kailas-cloud/creatorscout/internal/domain/session"
	"github.com/kailas-cloud/creatorscout/internal/logger"
	"github.com/kailas-cloud/creatorscout/internal/metrics"
	"github.com/kailas-cloud/creatorscout/internal/usecase/creatorsync"
	"github.com/kailas-cloud/creatorscout/internal/usecase/engagement"
	"github.com/kailas-cloud/creatorscout/internal/usecase/fanout"
	"github.com/kailas-cloud/creatorscout/internal/usecase/query"
	"github.com/kailas-cloud/creatorscout/internal/usecase/rank"
)

// Config tunes the search flows.
type Config struct {
	DefaultLimit  int    // results when the request gives none
	MaxLimit      int    // upper bound on requested results
	TikTokPeriod  string // TikTok search window in days
	TikTokWorkers int    // concurrent TikTok keyword searches
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{DefaultLimit: 10, MaxLimit: 50, TikTokPeriod: "180", TikTokWorkers: 10}
}

// Request is a creator search.
type Request struct {
	Platform     platform.Platform
	Topic        string
	Location     string
	Keywords     []string
	Limit        int
	MinFollowers int64 // 0 means no lower bound
	MaxFollowers int64 // 0 means no upper bound
	Session      session.Ref
}

func (r Request) bounded() bool { return r.MinFollowers > 0 || r.MaxFollowers > 0 }

// Result is the outcome of a search.
type Result struct {
	Profiles []profile.Profile
	Queries  int // formulated queries across platforms
}

// LookupRequest asks for creators by username.
type LookupRequest struct {
	Platform  platform.Platform
	Usernames []string
	Session   session.Ref
}

// Service runs creator discovery.
type Service struct {
	provider  SearchProvider
	tiktok    TikTokSearcher
	sync      Syncer
	ledger    Ledger
	suggester KeywordSuggester
	cfg       Config
}

// New creates a discovery service.
func New(provider SearchProvider, tiktok TikTokSearcher, sync Syncer, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = def.MaxLimit
	}
	if cfg.TikTokPeriod == "" {
		cfg.TikTokPeriod = def.TikTokPeriod
	}
	if cfg.TikTokWorkers <= 0 {
		cfg.TikTokWorkers = def.TikTokWorkers
	}
	return &Service{provider: provider, tiktok: tiktok, sync: sync, cfg: cfg}
}

// WithLedger sets the session ledger. Without one nothing is recorded.
func (s *Service) WithLedger(l Ledger) *Service {
	s.ledger = l
	return s
}

// WithSuggester sets the keyword suggester used when a request has no keywords.
func (s *Service) WithSuggester(k KeywordSuggester) *Service {
	s.suggester = k
	return s
}

// Search finds creators matching req. Without follower bounds results are
// ordered by engagement rate; with bounds they are filtered and keep
// their rank order.
func (s *Service) Search(ctx context.Context, req Request) (Result, error) {
	if err := s.normalize(&req); err != nil {
		return Result{}, err
	}
	log := logger.FromContext(ctx).With(zap.String("platform", string(req.Platform)))

	if len(req.Keywords) == 0 && s.suggester != nil {
		kws, err := s.suggester.SuggestKeywords(ctx, req.Topic, req.Location, req.Platform)
		if err != nil {
			log.Warn("keyword suggestion failed", zap.Error(err))
		} else {
			req.Keywords = kws
		}
	}

	var (
		profiles []profile.Profile
		queries  int
		err      error
	)
	switch req.Platform {
	case platform.Instagram:
		profiles, queries, err = s.searchWeb(ctx, log, req, req.Limit)
	case platform.TikTok:
		profiles, queries, err = s.searchTikTok(ctx, log, req, req.Limit)
	default:
		profiles, queries, err = s.searchCombined(ctx, log, req)
	}
	if err != nil {
		return Result{}, err
	}

	profiles = engagement.Annotate(profiles)
	if req.bounded() {
		profiles = filterFollowers(profiles, req.MinFollowers, req.MaxFollowers)
	} else {
		engagement.SortByRate(profiles)
	}
	s.record(ctx, log, req.Session, profiles)

	log.Info("creator search done",
		zap.Int("queries", queries),
		zap.Int("profiles", len(profiles)),
	)
	return Result{Profiles: profiles, Queries: queries}, nil
}

// Lookup returns creators by username, from the session ledger when it
// holds them and through the creator cache otherwise.
func (s *Service) Lookup(ctx context.Context, req LookupRequest) ([]profile.Profile, error) {
	if !req.Platform.Crawlable() {
		return nil, fmt.Errorf("%w: lookups support instagram and tiktok, got %q",
			domain.ErrInvalidPlatform, req.Platform)
	}
	names := dedupeNames(req.Usernames)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one username is required", domain.ErrInvalidRequest)
	}

	var profiles []profile.Profile
	if s.ledger != nil {
		found, err := s.ledger.Resolve(ctx, req.Session, req.Platform, names)
		if err != nil {
			return nil, fmt.Errorf("resolve creators: %w", err)
		}
		profiles = found
	} else {
		cands := make([]creatorsync.Candidate, len(names))
		for i, n := range names {
			cands[i] = creatorsync.Candidate{Key: profile.NewKey(n, req.Platform)}
		}
		profiles = resolved(s.sync.Sync(ctx, cands, creatorsync.Options{}))
	}
	return engagement.Annotate(profiles), nil
}

func (s *Service) normalize(req *Request) error {
	switch req.Platform {
	case platform.Instagram, platform.TikTok, platform.Combined:
	default:
		return fmt.Errorf("%w: search supports instagram, tiktok and combined, got %q",
			domain.ErrInvalidPlatform, req.Platform)
	}
	req.Topic = strings.TrimSpace(req.Topic)
	req.Location = strings.TrimSpace(req.Location)
	req.Keywords = slices.DeleteFunc(slices.Clone(req.Keywords), func(k string) bool {
		return strings.TrimSpace(k) == ""
	})
	if req.Topic == "" && req.Location == "" && len(req.Keywords) == 0 {
		return fmt.Errorf("%w: topic, location or keywords required", domain.ErrInvalidRequest)
	}
	if req.MinFollowers < 0 || req.MaxFollowers < 0 ||
		(req.MaxFollowers > 0 && req.MinFollowers > req.MaxFollowers) {
		return fmt.Errorf("%w: invalid follower bounds", domain.ErrInvalidRequest)
	}
	if req.Limit <= 0 {
		req.Limit = s.cfg.DefaultLimit
	}
	req.Limit = min(req.Limit, s.cfg.MaxLimit)
	return nil
}

// searchWeb runs the web search flow for Instagram. An empty ranking is
// retried once against the provider itself, past any result cache.
func (s *Service) searchWeb(
	ctx context.Context, log *zap.Logger, req Request, n int,
) ([]profile.Profile, int, error) {
	qs := query.Formulate(query.Request{
		Topic: req.Topic, Location: req.Location, Keywords: req.Keywords, Platform: platform.Instagram,
	})
	if len(qs) == 0 {
		return nil, 0, nil
	}

	ranked, err := s.rankWeb(ctx, qs, platform.Instagram, n)
	if err != nil {
		return nil, len(qs), err
	}
	if len(ranked) == 0 {
		log.Info("web search found no profiles, retrying once", zap.Int("queries", len(qs)))
		if ranked, err = s.rankWeb(search.WithFresh(ctx), qs, platform.Instagram, n); err != nil {
			return nil, len(qs), err
		}
	}

	cands := make([]creatorsync.Candidate, 0, len(ranked))
	for _, r := range ranked {
		cands = append(cands, creatorsync.Candidate{Key: profile.NewKey(r.ID, platform.Instagram)})
	}
	if len(cands) == 0 {
		return nil, len(qs), nil
	}
	return resolved(s.sync.Sync(ctx, cands, creatorsync.Options{})), len(qs), nil
}

// rankWeb runs qs, keeps hits that point at a profile page of p and ranks
// them by username frequency.
func (s *Service) rankWeb(
	ctx context.Context, qs []search.Query, p platform.Platform, n int,
) ([]search.Ranked, error) {
	byQuery, err := s.provider.BulkSearch(ctx, qs)
	if err != nil {
		return nil, fmt.Errorf("bulk search: %w", err)
	}
	var hits []search.Hit
	for _, q := range qs {
		for _, h := range byQuery[q.ID] {
			name, ok := platform.ParseProfileURL(h.URL, p)
			if !ok {
				continue
			}
			name = strings.ToLower(name)
			h.URL = profileURL(p, name)
			h.ID = name
			hits = append(hits, h)
		}
	}
	ranked := rank.Top(rank.Rank(hits), n)
	metrics.RankedResults.WithLabelValues(string(p)).Observe(float64(len(ranked)))
	return ranked, nil
}

type scoredAccount struct {
	account profile.Profile
	score   int
}

// searchTikTok runs TikTok native searches in parallel and orders accounts
// by how many phrases returned them.
func (s *Service) searchTikTok(
	ctx context.Context, log *zap.Logger, req Request, n int,
) ([]profile.Profile, int, error) {
	qs := query.FormulateTikTok(req.Topic, req.Location, req.Keywords)
	if len(qs) == 0 {
		return nil, 0, nil
	}

	outcomes := fanout.SortByIndex(fanout.Run(ctx, qs, s.cfg.TikTokWorkers,
		func(ctx context.Context, q search.Query) ([]profile.Profile, error) {
			return s.tiktok.SearchAccounts(ctx, q.Text, s.cfg.TikTokPeriod)
		}, fanout.WithOp("tiktok_search")))

	var (
		accounts []scoredAccount
		pos      = make(map[string]int)
		errs     []error
	)
	for _, oc := range outcomes {
		if oc.Err != nil {
			log.Warn("tiktok keyword search failed", zap.String("phrase", qs[oc.Index].Text), zap.Error(oc.Err))
			errs = append(errs, oc.Err)
			continue
		}
		for _, a := range oc.Value {
			id := a.Key().ID()
			if i, ok := pos[id]; ok {
				accounts[i].score++
				continue
			}
			pos[id] = len(accounts)
			accounts = append(accounts, scoredAccount{account: a, score: 1})
		}
	}
	if len(errs) == len(qs) {
		return nil, len(qs), fmt.Errorf("tiktok search: %w", errors.Join(errs...))
	}

	slices.SortStableFunc(accounts, func(a, b scoredAccount) int { return b.score - a.score })
	if len(accounts) > n {
		accounts = accounts[:n]
	}
	metrics.RankedResults.WithLabelValues(string(platform.TikTok)).Observe(float64(len(accounts)))
	if len(accounts) == 0 {
		return nil, len(qs), nil
	}

	cands := make([]creatorsync.Candidate, len(accounts))
	for i := range accounts {
		seed := accounts[i].account
		cands[i] = creatorsync.Candidate{Key: seed.Key(), Seed: &seed}
	}
	return resolved(s.sync.Sync(ctx, cands, creatorsync.Options{})), len(qs), nil
}

// searchCombined searches Instagram and TikTok in parallel, half the limit
// each (rounded up). One failing platform does not fail the search.
func (s *Service) searchCombined(
	ctx context.Context, log *zap.Logger, req Request,
) ([]profile.Profile, int, error) {
	half := (req.Limit + 1) / 2

	var (
		g            errgroup.Group
		igProfiles   []profile.Profile
		ttProfiles   []profile.Profile
		igQueries    int
		ttQueries    int
		igErr, ttErr error
	)
	g.Go(func() error {
		igProfiles, igQueries, igErr = s.searchWeb(ctx, log, req, half)
		return nil
	})
	g.Go(func() error {
		ttProfiles, ttQueries, ttErr = s.searchTikTok(ctx, log, req, half)
		return nil
	})
	_ = g.Wait()

	if igErr != nil && ttErr != nil {
		return nil, igQueries + ttQueries, errors.Join(igErr, ttErr)
	}
	if igErr != nil {
		log.Warn("instagram half of combined search failed", zap.Error(igErr))
	}
	if ttErr != nil {
		log.Warn("tiktok half of combined search failed", zap.Error(ttErr))
	}
	out := make([]profile.Profile, 0, len(igProfiles)+len(ttProfiles))
	out = append(out, igProfiles...)
	out = append(out, ttProfiles...)
	return out, igQueries + ttQueries, nil
}

// record appends search results to the session ledger. Failures are logged.
func (s *Service) record(ctx context.Context, log *zap.Logger, ref session.Ref, profiles []profile.Profile) {
	if s.ledger == nil || ref.IsZero() || len(profiles) == 0 {
		return
	}
	if err := s.ledger.Append(ctx, ref, profiles); err != nil {
		log.Error("session ledger append failed", zap.String("doc_id", ref.DocID()), zap.Error(err))
	}
}

// resolved returns the synced profiles in candidate order, once per key.
func resolved(rep creatorsync.Report) []profile.Profile {
	out := make([]profile.Profile, 0, len(rep.Resolutions))
	seen := make(map[string]struct{}, len(rep.Resolutions))
	for _, r := range rep.Resolutions {
		if r.Profile == nil {
			continue
		}
		id := r.Profile.Key().ID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, *r.Profile)
	}
	return out
}

func filterFollowers(profiles []profile.Profile, lo, hi int64) []profile.Profile {
	out := make([]profile.Profile, 0, len(profiles))
	for _, p := range profiles {
		f := p.Followers()
		if f < lo || (hi > 0 && f > hi) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func profileURL(p platform.Platform, name string) string {
	switch p {
	case platform.TikTok:
		return "https://www.tiktok.com/@" + name
	default:
		return "https://www." + p.Domain() + "/" + name + "/"
	}
}
