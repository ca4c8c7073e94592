package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/creatorscout/internal/db"
)

// JSONSet stores a JSON document at the given key and path.
func (s *Store) JSONSet(ctx context.Context, key, path string, data []byte) error {
	cmd := s.b().Arbitrary("JSON.SET").Keys(key).Args(path, string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return nil
}

// JSONSetMulti stores several documents in a single DoMulti round-trip.
func (s *Store) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) []error {
	if len(items) == 0 {
		return nil
	}
	cmds := make(rueidis.Commands, len(items))
	for i, it := range items {
		cmds[i] = s.b().Arbitrary("JSON.SET").Keys(it.Key).Args(it.Path, string(it.Data)).Build()
	}
	errs := make([]error, len(items))
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			errs[i] = &db.Error{Op: db.OpJSONSet, Err: err}
		}
	}
	return errs
}

// JSONGet retrieves a JSON document by key and optional paths.
func (s *Store) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	cmd := s.b().Arbitrary("JSON.GET").Keys(key).Args(paths...).Build()
	return jsonResult(s.do(ctx, cmd))
}

// JSONGetMulti retrieves whole documents for keys in a single DoMulti round-trip.
func (s *Store) JSONGetMulti(ctx context.Context, keys []string) ([][]byte, []error) {
	if len(keys) == 0 {
		return nil, nil
	}
	cmds := make(rueidis.Commands, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Arbitrary("JSON.GET").Keys(key).Build()
	}
	out := make([][]byte, len(keys))
	errs := make([]error, len(keys))
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		out[i], errs[i] = jsonResult(res)
	}
	return out, errs
}

func jsonResult(res rueidis.RedisResult) ([]byte, error) {
	raw, err := res.ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	}
	if raw == "" {
		return nil, db.ErrKeyNotFound
	}
	return []byte(raw), nil
}
