// Package creator stores crawled creator profiles keyed by platform and
// username. Repo backs onto RedisJSON, SQLiteRepo onto an embedded database.
package creator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/creatorscout/internal/db"
	"github.com/kailas-cloud/creatorscout/internal/domain"
	dombatch "github.com/kailas-cloud/creatorscout/internal/domain/batch"
	"github.com/kailas-cloud/creatorscout/internal/domain/lookup"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/repository/record"
	"github.com/kailas-cloud/creatorscout/internal/usecase/fanout"
)

// store is the consumer interface for creator documents (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) []error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, []error)
}

// Repo implements usecase/creatorsync.CreatorStore on RedisJSON.
type Repo struct {
	store       store
	prefix      string
	callTimeout time.Duration
	now         func() time.Time
}

// New creates a creator repository. An empty prefix defaults to
// "creatorscout:creator:".
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix + "creator:"
	}
	return &Repo{store: s, prefix: prefix, now: time.Now}
}

// WithCallTimeout bounds every pipelined chunk call.
func (r *Repo) WithCallTimeout(d time.Duration) *Repo {
	r.callTimeout = d
	return r
}

func (r *Repo) key(k profile.Key) string { return r.prefix + k.ID() }

// Get returns a stored profile regardless of age.
func (r *Repo) Get(ctx context.Context, k profile.Key) (profile.Profile, error) {
	key := r.key(k)
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return profile.Profile{}, fmt.Errorf("creator %s: %w", k, domain.ErrNotFound)
		}
		return profile.Profile{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return decode(raw)
}

// Save upserts one profile.
func (r *Repo) Save(ctx context.Context, p profile.Profile) error {
	data, err := json.Marshal(record.FromDomain(p))
	if err != nil {
		return fmt.Errorf("marshal creator: %w", err)
	}
	key := r.key(p.Key())
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// GetMany splits keys into at most workers chunks, each read in one
// pipelined round-trip.
func (r *Repo) GetMany(
	ctx context.Context, keys []profile.Key, maxAge time.Duration, workers int,
) ([]lookup.Result, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	now := r.now()
	chunks := chunk(keys, workers)
	outcomes := fanout.SortByIndex(fanout.Run(ctx, chunks, workers,
		func(ctx context.Context, c []profile.Key) ([]lookup.Result, error) {
			return r.getChunk(ctx, c, maxAge, now), nil
		}, r.opts("creator_get")...))

	results := make([]lookup.Result, 0, len(keys))
	for _, oc := range outcomes {
		if oc.Err != nil {
			for _, k := range chunks[oc.Index] {
				results = append(results, lookup.NewError(k, oc.Err))
			}
			continue
		}
		results = append(results, oc.Value...)
	}
	if err := allFailed(results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Repo) getChunk(ctx context.Context, keys []profile.Key, maxAge time.Duration, now time.Time) []lookup.Result {
	skeys := make([]string, len(keys))
	for i, k := range keys {
		skeys[i] = r.key(k)
	}
	raws, errs := r.store.JSONGetMulti(ctx, skeys)

	out := make([]lookup.Result, len(keys))
	for i, k := range keys {
		switch {
		case i >= len(errs) || i >= len(raws):
			out[i] = lookup.NewError(k, fmt.Errorf("json.get %s: missing reply", skeys[i]))
		case errors.Is(errs[i], db.ErrKeyNotFound):
			out[i] = lookup.NewMiss(k)
		case errs[i] != nil:
			out[i] = lookup.NewError(k, errs[i])
		default:
			out[i] = classify(k, raws[i], maxAge, now)
		}
	}
	return out
}

// SaveMany splits profiles into at most workers chunks, each written in
// one pipelined round-trip.
func (r *Repo) SaveMany(ctx context.Context, profiles []profile.Profile, workers int) ([]dombatch.Result, error) {
	if len(profiles) == 0 {
		return nil, nil
	}
	chunks := chunk(profiles, workers)
	outcomes := fanout.SortByIndex(fanout.Run(ctx, chunks, workers,
		func(ctx context.Context, c []profile.Profile) ([]dombatch.Result, error) {
			return r.saveChunk(ctx, c), nil
		}, r.opts("creator_save")...))

	results := make([]dombatch.Result, 0, len(profiles))
	for _, oc := range outcomes {
		if oc.Err != nil {
			for _, p := range chunks[oc.Index] {
				results = append(results, dombatch.NewError(p.Key(), oc.Err))
			}
			continue
		}
		results = append(results, oc.Value...)
	}
	if err := allSaveFailed(results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Repo) saveChunk(ctx context.Context, ps []profile.Profile) []dombatch.Result {
	out := make([]dombatch.Result, len(ps))
	items := make([]db.JSONSetItem, 0, len(ps))
	pos := make([]int, 0, len(ps))
	for i, p := range ps {
		data, err := json.Marshal(record.FromDomain(p))
		if err != nil {
			out[i] = dombatch.NewError(p.Key(), fmt.Errorf("marshal creator: %w", err))
			continue
		}
		items = append(items, db.JSONSetItem{Key: r.key(p.Key()), Path: "$", Data: data})
		pos = append(pos, i)
	}

	errs := r.store.JSONSetMulti(ctx, items)
	for n, i := range pos {
		k := ps[i].Key()
		switch {
		case n >= len(errs):
			out[i] = dombatch.NewError(k, fmt.Errorf("json.set %s: missing reply", items[n].Key))
		case errs[n] != nil:
			out[i] = dombatch.NewError(k, errs[n])
		default:
			out[i] = dombatch.NewOK(k)
		}
	}
	return out
}

func (r *Repo) opts(op string) []fanout.Option {
	o := []fanout.Option{fanout.WithOp(op)}
	if r.callTimeout > 0 {
		o = append(o, fanout.WithTimeout(r.callTimeout))
	}
	return o
}

func decode(raw []byte) (profile.Profile, error) {
	var rec record.Profile
	if err := json.Unmarshal(raw, &rec); err != nil {
		return profile.Profile{}, fmt.Errorf("decode creator: %w", err)
	}
	return rec.ToDomain(), nil
}

// classify turns a stored document into a hit, or a miss when older than maxAge.
func classify(k profile.Key, raw []byte, maxAge time.Duration, now time.Time) lookup.Result {
	p, err := decode(raw)
	if err != nil {
		return lookup.NewError(k, err)
	}
	if maxAge > 0 && now.Sub(p.FetchedAt()) > maxAge {
		return lookup.NewMiss(k)
	}
	return lookup.NewHit(k, p)
}

// chunk splits items into at most n contiguous parts of near-equal size.
func chunk[T any](items []T, n int) [][]T {
	n = max(1, min(n, len(items)))
	size := (len(items) + n - 1) / n
	out := make([][]T, 0, n)
	for start := 0; start < len(items); start += size {
		out = append(out, items[start:min(start+size, len(items))])
	}
	return out
}

func allFailed(results []lookup.Result) error {
	for _, r := range results {
		if r.Outcome() != lookup.OutcomeError {
			return nil
		}
	}
	return fmt.Errorf("creator lookup: all %d keys failed: %w", len(results), results[0].Err())
}

func allSaveFailed(results []dombatch.Result) error {
	saved, failed := dombatch.Partition(results)
	if len(saved) > 0 || len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("creator save: all %d items failed: %w", len(failed), failed[0].Err())
}
