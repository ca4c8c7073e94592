// Package ledger keeps the append-only list of profiles shown in a session.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/kailas-cloud/creatorscout/internal/domain"
	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/domain/session"
	"github.com/kailas-cloud/creatorscout/internal/logger"
	"github.com/kailas-cloud/creatorscout/internal/usecase/creatorsync"
)

// Service manages session ledgers.
type Service struct {
	store Store
	sync  Syncer
}

// New creates a ledger service. sync may be nil, in which case Resolve
// only reads the ledger.
func New(store Store, sync Syncer) *Service {
	return &Service{store: store, sync: sync}
}

// Append concatenates entries to the session document. Concurrent appends
// to the same session are last-writer-wins.
func (s *Service) Append(ctx context.Context, ref session.Ref, entries []profile.Profile) error {
	if len(entries) == 0 {
		return nil
	}
	current, err := s.load(ctx, ref)
	if err != nil {
		return err
	}
	merged := make([]profile.Profile, 0, len(current)+len(entries))
	merged = append(merged, current...)
	merged = append(merged, entries...)

	if err := s.store.Upsert(ctx, ref.DocID(), merged); err != nil {
		return fmt.Errorf("upsert ledger %s: %w", ref.DocID(), err)
	}
	logger.FromContext(ctx).Debug("ledger appended",
		zap.String("doc_id", ref.DocID()),
		zap.Int("added", len(entries)),
		zap.Int("total", len(merged)),
	)
	return nil
}

// Lookup returns ledger entries whose username matches one of usernames,
// case-insensitively and ignoring a leading @. No usernames returns every entry.
func (s *Service) Lookup(ctx context.Context, ref session.Ref, usernames []string) ([]profile.Profile, error) {
	entries, err := s.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(usernames) == 0 {
		return entries, nil
	}
	want := make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		want[s.foldName(u)] = struct{}{}
	}
	var matched []profile.Profile
	for _, e := range entries {
		if _, ok := want[s.foldName(e.Username())]; ok {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// Resolve returns profiles for usernames on p, reading the ledger first and
// syncing the rest through the creator cache. Synced profiles are appended
// to the ledger. Ledger read failures fall through to the sync.
func (s *Service) Resolve(
	ctx context.Context, ref session.Ref, p platform.Platform, usernames []string,
) ([]profile.Profile, error) {
	log := logger.FromContext(ctx)

	var found []profile.Profile
	if !ref.IsZero() {
		entries, err := s.Lookup(ctx, ref, usernames)
		if err != nil {
			log.Warn("ledger lookup failed, resolving from creator cache", zap.Error(err))
		}
		seen := make(map[string]struct{})
		for _, e := range entries {
			if p != platform.Combined && e.Platform() != p {
				continue
			}
			name := s.foldName(e.Username())
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			found = append(found, e)
		}
	}

	missing := s.missing(found, usernames)
	if len(missing) == 0 || s.sync == nil {
		return found, nil
	}
	if !p.Crawlable() {
		return found, fmt.Errorf("%w: cannot crawl %s creators", domain.ErrInvalidPlatform, p)
	}

	cands := make([]creatorsync.Candidate, len(missing))
	for i, u := range missing {
		cands[i] = creatorsync.Candidate{Key: profile.NewKey(u, p)}
	}
	rep := s.sync.Sync(ctx, cands, creatorsync.Options{})
	if !ref.IsZero() && len(rep.Profiles) > 0 {
		if err := s.Append(ctx, ref, rep.Profiles); err != nil {
			log.Warn("recording looked-up creators failed", zap.Error(err))
		}
	}
	return append(found, rep.Profiles...), nil
}

func (s *Service) missing(found []profile.Profile, usernames []string) []string {
	have := make(map[string]struct{}, len(found))
	for _, f := range found {
		have[s.foldName(f.Username())] = struct{}{}
	}
	var out []string
	seen := make(map[string]struct{})
	for _, u := range usernames {
		name := s.foldName(u)
		if name == "" {
			continue
		}
		if _, ok := have[name]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, profile.NormalizeUsername(u))
	}
	return out
}

func (s *Service) load(ctx context.Context, ref session.Ref) ([]profile.Profile, error) {
	entries, err := s.store.Get(ctx, ref.DocID())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger %s: %w", ref.DocID(), err)
	}
	return entries, nil
}

// foldName case-folds a normalized username. Casers carry state, so each
// call gets its own.
func (s *Service) foldName(u string) string {
	return cases.Fold().String(profile.NormalizeUsername(u))
}
