// Package creatorsync resolves creator keys to full profiles, serving fresh
// cached entries and crawling and saving back the rest.
package creatorsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/creatorscout/internal/domain"
	dombatch "github.com/kailas-cloud/creatorscout/internal/domain/batch"
	"github.com/kailas-cloud/creatorscout/internal/domain/lookup"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/logger"
	"github.com/kailas-cloud/creatorscout/internal/metrics"
	"github.com/kailas-cloud/creatorscout/internal/usecase/fanout"
)

// DefaultDepth is the number of content pages crawled per creator.
const DefaultDepth = 1

// Candidate is a creator to resolve. Seed carries account data a search
// already returned, so only content needs crawling.
type Candidate struct {
	Key  profile.Key
	Seed *profile.Profile
}

// Options tunes one Sync call.
type Options struct {
	Depth int // content pages per creator, DefaultDepth when <= 0
}

// Source tells where a resolved profile came from.
type Source string

// Resolution sources.
const (
	SourceCache Source = "cache"
	SourceFetch Source = "fetch"
	SourceNone  Source = "none"
)

// Resolution is the per-candidate outcome of a Sync call.
type Resolution struct {
	Key     profile.Key
	Source  Source
	Profile *profile.Profile
	Err     error
}

// Report is the outcome of a Sync call.
type Report struct {
	// Profiles holds cached hits followed by freshly fetched profiles.
	Profiles []profile.Profile
	// Resolutions has one entry per input candidate, in input order.
	Resolutions []Resolution
}

// Service implements the cache-then-crawl sync of creator profiles.
type Service struct {
	store   CreatorStore
	fetcher Fetcher
	cfg     domain.CacheConfig
}

// New creates a sync service.
func New(store CreatorStore, fetcher Fetcher, cfg domain.CacheConfig) *Service {
	def := domain.DefaultCacheConfig()
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = def.MaxAge
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	return &Service{store: store, fetcher: fetcher, cfg: cfg}
}

// Sync resolves every candidate. It never fails as a whole: per-key store
// and crawl errors are logged and reported in Resolutions.
func (s *Service) Sync(ctx context.Context, cands []Candidate, opts Options) Report {
	if len(cands) == 0 {
		return Report{}
	}
	if opts.Depth <= 0 {
		opts.Depth = DefaultDepth
	}
	log := logger.FromContext(ctx)

	res := make([]Resolution, len(cands))
	for i, c := range cands {
		res[i] = Resolution{Key: c.Key, Source: SourceNone}
	}

	first := firstOccurrences(cands)
	cached, toFetch := s.checkCache(ctx, log, cands, first, res)

	fetched := s.fetch(ctx, log, cands, toFetch, opts.Depth, res)
	if len(fetched) > 0 {
		s.saveBack(ctx, log, fetched)
	}
	linkDuplicates(cands, first, res)

	profiles := make([]profile.Profile, 0, len(cached)+len(fetched))
	profiles = append(profiles, cached...)
	profiles = append(profiles, fetched...)

	log.Info("creator sync done",
		zap.Int("requested", len(cands)),
		zap.Int("cached", len(cached)),
		zap.Int("fetched", len(fetched)),
	)
	return Report{Profiles: profiles, Resolutions: res}
}

// checkCache returns usable cached profiles and the candidate indexes that
// need a crawl. Duplicate keys are resolved once; their later occurrences
// share the first one's resolution.
func (s *Service) checkCache(
	ctx context.Context, log *zap.Logger, cands []Candidate, first map[string]int, res []Resolution,
) ([]profile.Profile, []int) {
	var (
		keys    []profile.Key
		keyIdx  []int
		toFetch []int
	)
	for i, c := range cands {
		if c.Key.Username == "" {
			toFetch = append(toFetch, i)
			continue
		}
		if first[c.Key.ID()] != i {
			continue
		}
		keys = append(keys, c.Key)
		keyIdx = append(keyIdx, i)
	}

	if len(keys) == 0 {
		return nil, toFetch
	}

	results, err := s.store.GetMany(ctx, keys, s.cfg.MaxAge, min(s.cfg.Workers, len(keys)))
	if err != nil {
		log.Warn("creator store batch lookup failed, crawling all", zap.Error(err))
		return nil, append(toFetch, keyIdx...)
	}

	byID := make(map[string]lookup.Result, len(results))
	for _, r := range results {
		byID[r.Key().ID()] = r
	}

	var cached []profile.Profile
	for n, k := range keys {
		i := keyIdx[n]
		r, ok := byID[k.ID()]
		if !ok {
			toFetch = append(toFetch, i)
			continue
		}
		switch r.Outcome() {
		case lookup.OutcomeHit:
			p, _ := r.Profile()
			if !p.Usable() {
				log.Debug("cached creator incomplete, crawling", zap.Stringer("key", k))
				metrics.CreatorLookupsTotal.WithLabelValues(string(k.Platform), "stale").Inc()
				toFetch = append(toFetch, i)
				continue
			}
			metrics.CreatorLookupsTotal.WithLabelValues(string(k.Platform), "hit").Inc()
			cached = append(cached, p)
			res[i].Source = SourceCache
			res[i].Profile = &p
		case lookup.OutcomeError:
			log.Warn("creator lookup failed, crawling", zap.Stringer("key", k), zap.Error(r.Err()))
			metrics.CreatorLookupsTotal.WithLabelValues(string(k.Platform), "error").Inc()
			toFetch = append(toFetch, i)
		default:
			metrics.CreatorLookupsTotal.WithLabelValues(string(k.Platform), "miss").Inc()
			toFetch = append(toFetch, i)
		}
	}
	return cached, toFetch
}

// fetch crawls the candidates at idx. Failures are left as SourceNone.
func (s *Service) fetch(
	ctx context.Context, log *zap.Logger, cands []Candidate, idx []int, depth int, res []Resolution,
) []profile.Profile {
	if len(idx) == 0 {
		return nil
	}
	outcomes := fanout.SortByIndex(fanout.Run(ctx, idx, s.cfg.Workers,
		func(ctx context.Context, i int) (profile.Profile, error) {
			return s.fetchOne(ctx, log, cands[i], depth)
		}, fanout.WithOp("crawl")))

	fetched := make([]profile.Profile, 0, len(outcomes))
	for _, oc := range outcomes {
		i := idx[oc.Index]
		k := cands[i].Key
		if oc.Err != nil {
			log.Warn("creator crawl failed", zap.Stringer("key", k), zap.Error(oc.Err))
			metrics.CreatorFetchesTotal.WithLabelValues(string(k.Platform), "error").Inc()
			res[i].Err = oc.Err
			continue
		}
		metrics.CreatorFetchesTotal.WithLabelValues(string(k.Platform), "ok").Inc()
		p := oc.Value
		fetched = append(fetched, p)
		res[i].Source = SourceFetch
		res[i].Profile = &p
		res[i].Err = nil
	}
	return fetched
}

func (s *Service) fetchOne(ctx context.Context, log *zap.Logger, c Candidate, depth int) (profile.Profile, error) {
	plat := c.Key.Platform
	if !plat.Crawlable() {
		return profile.Profile{}, fmt.Errorf("%w: %s is not crawlable", domain.ErrInvalidPlatform, plat)
	}

	var base profile.Profile
	switch {
	case c.Seed != nil:
		base = *c.Seed
	case c.Key.Username == "":
		return profile.Profile{}, fmt.Errorf("%w: empty username", domain.ErrInvalidUsername)
	default:
		p, err := s.fetcher.FetchProfile(ctx, plat, c.Key.Username)
		if err != nil {
			return profile.Profile{}, fmt.Errorf("fetch profile %s: %w", c.Key, err)
		}
		base = p
	}

	if !plat.RequiresContent() {
		return base, nil
	}

	items, err := s.fetcher.FetchContent(ctx, plat, base.Username(), depth)
	if err != nil {
		log.Warn("content crawl failed, keeping profile without content",
			zap.Stringer("key", c.Key), zap.Error(err))
		return base, nil
	}
	return base.WithContent(items, base.Secondary()), nil
}

// saveBack writes fetched profiles to the store. Per-entry failures get
// one retry; a failed batch call falls back to one-by-one saves.
func (s *Service) saveBack(ctx context.Context, log *zap.Logger, fetched []profile.Profile) {
	byID := make(map[string]profile.Profile, len(fetched))
	for _, p := range fetched {
		byID[p.Key().ID()] = p
	}

	results, err := s.store.SaveMany(ctx, fetched, min(s.cfg.Workers, len(fetched)))
	if err != nil {
		log.Error("creator batch save failed, saving sequentially", zap.Error(err))
		for _, p := range fetched {
			s.saveOne(ctx, log, p, "ok")
		}
		return
	}

	saved, failed := dombatch.Partition(results)
	for _, r := range saved {
		metrics.CreatorSavesTotal.WithLabelValues(string(r.Key().Platform), "ok").Inc()
	}
	if len(failed) > 0 {
		log.Warn("creator saves failed, retrying one by one",
			zap.Int("failed", len(failed)), zap.Int("saved", len(saved)))
	}
	for _, r := range failed {
		log.Debug("creator save failed", zap.Stringer("key", r.Key()), zap.Error(r.Err()))
		if p, ok := byID[r.Key().ID()]; ok {
			s.saveOne(ctx, log, p, "retry")
		}
	}
}

func (s *Service) saveOne(ctx context.Context, log *zap.Logger, p profile.Profile, okLabel string) {
	plat := string(p.Platform())
	if err := s.store.Save(ctx, p); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("creator save failed", zap.Stringer("key", p.Key()), zap.Error(err))
		metrics.CreatorSavesTotal.WithLabelValues(plat, "error").Inc()
		return
	}
	metrics.CreatorSavesTotal.WithLabelValues(plat, okLabel).Inc()
}

func firstOccurrences(cands []Candidate) map[string]int {
	first := make(map[string]int, len(cands))
	for i, c := range cands {
		if c.Key.Username == "" {
			continue
		}
		if _, ok := first[c.Key.ID()]; !ok {
			first[c.Key.ID()] = i
		}
	}
	return first
}

// linkDuplicates copies each first-occurrence resolution to later
// candidates with the same key.
func linkDuplicates(cands []Candidate, first map[string]int, res []Resolution) {
	for i, c := range cands {
		if c.Key.Username == "" {
			continue
		}
		if j := first[c.Key.ID()]; j != i {
			r := res[j]
			r.Key = c.Key
			res[i] = r
		}
	}
}

// MaxAge returns the freshness window used for lookups.
func (s *Service) MaxAge() time.Duration { return s.cfg.MaxAge }
